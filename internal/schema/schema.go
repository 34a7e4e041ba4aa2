// Package schema holds the static datamodel texts shipped with ckctl.
package schema

// DefaultDatamodel is the skeleton written when a project starts from an
// empty database. Introspected projects replace it entirely.
const DefaultDatamodel = `type User {
  id: ID! @id
  createdAt: DateTime! @createdAt
  updatedAt: DateTime! @updatedAt
  name: String!
}
`

// ManagementDatamodel describes the server's internal migrations and
// telemetry store. It is static metadata baked into the server image; the
// wizard never edits it, but `ckctl init --verbose` prints it so operators
// can see what the management database will contain.
const ManagementDatamodel = `type Migration @db(name: "migrations") {
  projectId: String! @id
  revision: Int!
  schema: String
  functions: Json!
  status: MigrationStatus!
  applied: Int!
  rolledBack: Int!
  steps: Json!
  errors: Json!
  startedAt: DateTime
  finishedAt: DateTime
  datamodelSteps: Json!
  datamodel: Json
}

enum MigrationStatus {
  PENDING
  MIGRATION_IN_PROGRESS
  SUCCESS
  ROLLING_BACK
  ROLLBACK_SUCCESS
  ROLLBACK_FAILURE
}

type Project @db(name: "projects") {
  id: String! @id
  secrets: Json
  allowQueries: Boolean!
  allowMutations: Boolean!
  functions: Json!
}

type TelemetryInfo @db(name: "telemetry_info") {
  id: String! @id
  lastPinged: DateTime
}

type CloudSecret @db(name: "cloud_secret") {
  secret: String! @id
}
`
