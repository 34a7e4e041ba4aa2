// Package cluster models deployment targets and the platform API client
// used to resolve them.
package cluster

import "strings"

// Cluster is a named deployment target. Shared clusters are the hosted
// multi-tenant regions; Local covers clusters served from the developer's
// machine.
type Cluster struct {
	Name         string `json:"name"`
	Workspace    string `json:"workspace,omitempty"`
	BaseURL      string `json:"base_url"`
	Shared       bool   `json:"shared"`
	Local        bool   `json:"local"`
	RequiresAuth bool   `json:"requires_auth"`
}

// IsLocal reports whether the cluster runs on the developer's machine.
func (c Cluster) IsLocal() bool { return c.Local }

// legacyAliases swaps the two legacy shared-cluster identifiers with their
// current public names. The table is symmetric, so applying it twice is the
// identity; display uses one direction, parsing user choice the other.
var legacyAliases = map[string]string{
	"prisma-eu1": "demo-eu1",
	"prisma-us1": "demo-us1",
	"demo-eu1":   "prisma-eu1",
	"demo-us1":   "prisma-us1",
}

func swapAlias(name string) string {
	if alias, ok := legacyAliases[name]; ok {
		return alias
	}
	return name
}

// EncodeName maps a cluster name to the identifier shown to users.
func EncodeName(name string) string { return swapAlias(name) }

// DecodeName maps a user-facing identifier back to the cluster name.
func DecodeName(name string) string { return swapAlias(name) }

// DisplayName renders a cluster as a menu label, `workspace/name` when the
// cluster belongs to a workspace.
func DisplayName(c Cluster) string {
	name := EncodeName(c.Name)
	if c.Workspace != "" {
		return c.Workspace + "/" + name
	}
	return name
}

// ParseChoice splits a `[workspace/]name` menu label and decodes the name.
func ParseChoice(label string) (workspace, name string) {
	if i := strings.Index(label, "/"); i >= 0 {
		return label[:i], DecodeName(label[i+1:])
	}
	return "", DecodeName(label)
}

// FindByName resolves a cluster by exact name and, when given, workspace.
func FindByName(clusters []Cluster, name, workspace string) (Cluster, bool) {
	for _, c := range clusters {
		if c.Name != name {
			continue
		}
		if workspace != "" && c.Workspace != workspace {
			continue
		}
		return c, true
	}
	return Cluster{}, false
}
