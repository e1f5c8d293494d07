package domain

// Employee is the identity of the logged-in user. It is written into the
// session by the login flow, which lives outside this service.
type Employee struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
