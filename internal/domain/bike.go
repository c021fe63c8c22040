package domain

// Bike is a rentable bike listed by an owner.
type Bike struct {
	ID        string
	OwnerID   string
	Name      string
	Available bool
}
