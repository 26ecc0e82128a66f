package validator

import (
	"errors"
	"net/url"
)

// CallbackURL checks that a client webhook target is an absolute http(s) URL.
func CallbackURL(raw string) error {
	if raw == "" {
		return errors.New("callback_url is required")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("invalid callback_url format")
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("callback_url must start with http:// or https://")
	}
	if u.Host == "" {
		return errors.New("callback_url must include a host")
	}

	return nil
}
