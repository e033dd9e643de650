package actions

import "fmt"

type ParseError struct {
	Source string
	Err    error
}

func (this *ParseError) Error() string {
	if this.Source == "" {
		return fmt.Sprintf("failed to parse actions catalog: %v", this.Err)
	}
	return fmt.Sprintf("failed to parse actions catalog %s: %v", this.Source, this.Err)
}

func (this *ParseError) Unwrap() error { return this.Err }

type NotFoundError struct {
	Name string
}

func (this *NotFoundError) Error() string {
	return fmt.Sprintf("action %q not found", this.Name)
}
