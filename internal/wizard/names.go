package wizard

import (
	"fmt"
	"math/rand"
)

// Word lists for generated public service names. Names follow the
// adjective-noun-NN shape so unauthenticated users get a unique,
// display-safe identifier without being prompted.
var nameAdjectives = []string{
	"amber", "bold", "brisk", "calm", "clever", "crimson", "eager",
	"gentle", "golden", "hidden", "jolly", "lively", "mellow", "misty",
	"noble", "proud", "quiet", "rapid", "silver", "sunny", "swift",
	"tidy", "vivid", "wild", "young",
}

var nameNouns = []string{
	"badger", "canyon", "cedar", "comet", "falcon", "fjord", "glacier",
	"harbor", "heron", "lagoon", "lynx", "meadow", "orchid", "otter",
	"panda", "pebble", "prairie", "raven", "reef", "sparrow", "summit",
	"thicket", "tundra", "willow", "wren",
}

// randomName derives a public-facing service name from the given source.
func randomName(r *rand.Rand) string {
	adjective := nameAdjectives[r.Intn(len(nameAdjectives))]
	noun := nameNouns[r.Intn(len(nameNouns))]
	return fmt.Sprintf("%s-%s-%02d", adjective, noun, r.Intn(100))
}

// RandomName returns a generated adjective-noun-NN service name.
func RandomName() string {
	return randomName(rand.New(rand.NewSource(rand.Int63())))
}
