package domain

// Investor is a primary record. Immutable after creation; never deleted.
type Investor struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	UID      string `json:"uid"`
	Username string `json:"username"`
}

// Key returns the investor's primary key.
func (i *Investor) Key() string { return InvestorKey(i.ID) }

// Validate checks required fields before any write.
func (i *Investor) Validate() error {
	var bad []string
	if i.ID == "" {
		bad = append(bad, "id")
	}
	if i.Name == "" {
		bad = append(bad, "name")
	}
	if i.UID == "" {
		bad = append(bad, "uid")
	}
	if i.Username == "" {
		bad = append(bad, "username")
	}
	if len(bad) > 0 {
		return &ValidationError{Entity: "investor", Fields: bad}
	}
	return nil
}

// Fields flattens the investor for a single hash write.
func (i *Investor) Fields() map[string]string {
	return map[string]string{
		"id":       i.ID,
		"name":     i.Name,
		"uid":      i.UID,
		"username": i.Username,
	}
}

// InvestorFromFields rebuilds an investor from a persisted field map.
func InvestorFromFields(fields map[string]string) (*Investor, error) {
	inv := &Investor{
		ID:       fields["id"],
		Name:     fields["name"],
		UID:      fields["uid"],
		Username: fields["username"],
	}
	if err := inv.Validate(); err != nil {
		return nil, err
	}
	return inv, nil
}
