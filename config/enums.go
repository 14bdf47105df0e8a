package config

import (
	"fmt"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// BodyKind tells how a fragment body should be treated after fetching.
type BodyKind string

const (
	BodyKindHTML BodyKind = "html"
	BodyKindJSON BodyKind = "json"
)

func (k BodyKind) String() string {
	return string(k)
}

func (k *BodyKind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	switch BodyKind(s) {
	case BodyKindHTML, BodyKindJSON, "":
		*k = BodyKind(s)
		return nil
	}
	return fmt.Errorf("unknown body kind %q, expected one of [html json]", s)
}

func (k BodyKind) MarshalYAML() (any, error) {
	return string(k), nil
}

// Duration is a time.Duration with yaml support, so configuration could
// say "30s" or "1m" directly.
type Duration time.Duration

func (d Duration) Value() time.Duration {
	return time.Duration(d)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	if len(s) == 0 {
		*d = 0
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("bad duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}
