package model

// Admin is a registered quiz author, keyed by email
type Admin struct {
	Name          string `json:"name"`
	Password      string `json:"password"`
	SessionActive bool   `json:"sessionActive"`
}

// Admins is the persisted admins document
type Admins map[string]*Admin
