package domain

// Identity is the stable handle identifying a signed-in person.
// It is owned by the identity provider; the session store only holds
// a reference to it for the lifetime of the session.
type Identity struct {
	ID    string `bson:"_id,omitempty" json:"id"`
	Email string `bson:"email" json:"email"`
	Name  string `bson:"name,omitempty" json:"name,omitempty"`
}
