package model

// Terminal is a merchant's registered payment-acceptance identity in the
// mock bank. Username and password are the credentials the merchant would
// use against the real gateway; here they are generated uuids.
type Terminal struct {
	ID       uint64
	Name     string
	Username string
	Password string
}
