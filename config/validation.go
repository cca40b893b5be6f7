package config

import (
	"errors"
	"fmt"

	"github.com/jfrog/packagecloud-publisher-go/entities"
	"github.com/jfrog/packagecloud-publisher-go/publish"
	"github.com/jfrog/packagecloud-publisher-go/utils"
)

var ErrInvalid = errors.New("invalid configuration")

// FieldError reports a single invalid configuration value.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalid
}

// CheckUsername returns an error if username has no credentials.
func CheckUsername(credentials []Credentials, username string) error {
	if username == "" {
		return &FieldError{Field: "username", Message: "username must be set"}
	}
	for _, c := range credentials {
		if c.Username == username {
			return nil
		}
	}
	return &FieldError{Field: "username", Message: fmt.Sprintf("no credentials for user '%s'", username)}
}

// CheckDistro returns an error if there are no credentials to load distributions with.
func CheckDistro(credentials []Credentials) error {
	if len(credentials) == 0 {
		return &FieldError{Field: "distro", Message: "credentials are required to load distributions"}
	}
	return nil
}

// Validate checks the values the publisher needs before anything is built. All problems are returned.
func (c *Config) Validate() error {
	var errs []error
	if c.Repository == "" {
		errs = append(errs, &FieldError{Field: "repository", Message: "repository must be set"})
	}
	if _, err := c.CredentialsForUser(c.Username); err != nil {
		errs = append(errs, CheckUsername(c.Credentials, c.Username))
	}
	errs = append(errs, c.validateDistro()...)
	errs = append(errs, c.validateFiles()...)
	return errors.Join(errs...)
}

func (c *Config) validateDistro() []error {
	selector := publish.DistroSelector(c.Distro)
	if c.Distro == "" {
		return []error{&FieldError{Field: "distro", Message: "distro must be set"}}
	}
	if err := selector.Validate(); err != nil {
		return []error{&FieldError{Field: "distro", Message: err.Error()}}
	}
	var errs []error
	if selector.IsGem() {
		// Source packages always need a distribution version.
		for _, file := range c.Files {
			if publish.ResolveType(file.Name, selector) == entities.SourcePackage {
				errs = append(errs, &FieldError{Field: "distro", Message: fmt.Sprintf("'%s' requires a numeric distribution version id", file.Name)})
			}
		}
	}
	return errs
}

func (c *Config) validateFiles() []error {
	var errs []error
	names := utils.NewStringSet()
	for i, file := range c.Files {
		if file.Name == "" || file.Path == "" {
			errs = append(errs, &FieldError{Field: fmt.Sprintf("files[%d]", i), Message: "name and path must be set"})
			continue
		}
		if names.Contains(file.Name) {
			errs = append(errs, &FieldError{Field: fmt.Sprintf("files[%d]", i), Message: fmt.Sprintf("duplicate file name '%s'", file.Name)})
		}
		names.Add(file.Name)
	}
	return errs
}
