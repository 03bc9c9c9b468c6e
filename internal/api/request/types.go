package request

// Login is the request body for POST /login
type Login struct {
	Username string `json:"username"`
	Password string `json:"password"`
	// GameCode admits first-time identities
	GameCode string `json:"gamecode"`
}
