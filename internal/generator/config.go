package generator

// Config drives the synthetic data generator.
type Config struct {
	NumPeople   int
	NumServices int
	// CoOfferChance is the probability that a second person also offers a service.
	CoOfferChance float64
	// MaxUsesPerPerson bounds how many services one person uses.
	MaxUsesPerPerson int
	// Password is assigned to every generated account.
	Password string
	Roles    []string
	Seed     int64
}

// DefaultConfig returns baseline settings for a small campus.
func DefaultConfig() Config {
	return Config{
		NumPeople:        200,
		NumServices:      60,
		CoOfferChance:    0.3,
		MaxUsesPerPerson: 3,
		Password:         "changeme",
		Seed:             42,
	}
}
