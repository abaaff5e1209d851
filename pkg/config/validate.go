package config

import (
	"fmt"
)

// Validate re-checks every invariant on an already constructed config
// and returns the first violation.
func (c *Config) Validate() error {
	if errs := c.ValidateAll(); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// ValidateAll performs comprehensive validation of the entire config.
// It aggregates all errors and returns them, allowing the caller to print all issues at once.
func (c *Config) ValidateAll() []error {
	var errs []error

	errs = append(errs, c.validateRest()...)
	errs = append(errs, c.validateP2P()...)

	return errs
}

func (c *Config) validateRest() []error {
	var errs []error
	rc := c.Rest

	if rc.Listen.IsZero() {
		errs = append(errs, missing("rest.listen"))
	} else if _, err := ParseHostPort(rc.Listen.String()); err != nil {
		errs = append(errs, ValidationError{
			Kind:    InvalidAddress,
			Path:    "rest.listen",
			Message: err.Error(),
			Hint:    hostPortHint,
		})
	}

	// The bundle is opened by the REST server, not here.
	if rc.Pkcs12 != nil && *rc.Pkcs12 == "" {
		errs = append(errs, ValidationError{
			Kind:    InvalidValue,
			Path:    "rest.pkcs12",
			Message: "must not be empty",
			Hint:    "remove the key to run without TLS",
		})
	}

	if rc.Cors != nil {
		for i, origin := range rc.Cors.AllowedOrigins {
			if origin == "" {
				errs = append(errs, ValidationError{
					Kind:    InvalidValue,
					Path:    fmt.Sprintf("rest.cors.allowed_origins[%d]", i),
					Message: "must not be empty",
				})
			}
		}
		if rc.Cors.MaxAgeSecs != nil && *rc.Cors.MaxAgeSecs < 0 {
			errs = append(errs, ValidationError{
				Kind:    InvalidValue,
				Path:    "rest.cors.max_age_secs",
				Message: fmt.Sprintf("must be >= 0; got %d", *rc.Cors.MaxAgeSecs),
				Hint:    "remove the key to disable preflight caching",
			})
		}
	}

	return errs
}

func (c *Config) validateP2P() []error {
	var errs []error
	pc := c.P2P

	for i, peer := range pc.TrustedPeers {
		path := fmt.Sprintf("p2p.trusted_peers[%d]", i)
		if peer.IsZero() {
			errs = append(errs, ValidationError{
				Kind:    InvalidAddress,
				Path:    path,
				Message: "must not be empty",
			})
			continue
		}
		if _, err := ParseAddress(peer.String()); err != nil {
			errs = append(errs, ValidationError{
				Kind:    InvalidAddress,
				Path:    path,
				Message: err.Error(),
				Hint:    p2pAddrHint,
			})
		}
	}

	if pc.PublicID != nil && *pc.PublicID == "" {
		errs = append(errs, ValidationError{
			Kind:    InvalidValue,
			Path:    "p2p.public_id",
			Message: "must not be empty",
			Hint:    "remove the key to generate an identifier at startup",
		})
	}

	if pc.PublicAddress.IsZero() {
		errs = append(errs, missing("p2p.public_address"))
	} else if _, err := ParseAddress(pc.PublicAddress.String()); err != nil {
		errs = append(errs, ValidationError{
			Kind:    InvalidAddress,
			Path:    "p2p.public_address",
			Message: err.Error(),
			Hint:    p2pAddrHint,
		})
	}

	errs = append(errs, validateLevel("p2p.topics_of_interest.messages", pc.TopicsOfInterest.Messages)...)
	errs = append(errs, validateLevel("p2p.topics_of_interest.blocks", pc.TopicsOfInterest.Blocks)...)

	return errs
}

func validateLevel(path string, level InterestLevel) []error {
	switch {
	case level == 0:
		return []error{missing(path)}
	case !level.Valid():
		return []error{ValidationError{
			Kind:    InvalidEnumValue,
			Path:    path,
			Message: fmt.Sprintf("invalid value %s", level),
			Hint:    interestHint,
		}}
	}
	return nil
}
