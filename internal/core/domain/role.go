package domain

// RoleID identifies a role in the user-role and function-role relations.
type RoleID int

// Role is a named capability a user may hold. Assignment is many-to-many:
// a user has zero or more roles.
type Role struct {
	ID   RoleID `json:"id"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Function gates a resource by path prefix: any request whose path starts
// with Key requires one of RoleIDs. Overlapping prefixes are a configuration
// hazard; the first match in index-traversal order wins.
type Function struct {
	Key     string   `json:"key"`
	RoleIDs []RoleID `json:"role_ids"`
}
