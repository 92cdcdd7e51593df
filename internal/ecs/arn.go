// Package ecs parses ECS resource identifiers found in EventBridge deployment events.
package ecs

import (
	"errors"
	"strings"
)

const (
	arnSections     = 6
	pathSections    = 3
	servicePathPart = "service"
)

var (
	// ErrMalformedARN matches every error returned by ParseServiceARN.
	ErrMalformedARN = errors.New("malformed service ARN")

	ErrMissingSection      = errors.New("ARN missing section")
	ErrTooManySections     = errors.New("ARN has too many sections")
	ErrMissingPathSection  = errors.New("ARN missing path section")
	ErrTooManyPathSections = errors.New("ARN has too many path sections")
	ErrNotServicePath      = errors.New("ARN does not have service path")
)

// ARNError describes why a raw ARN could not be parsed as an ECS service ARN.
// Its message is the bare reason so it can be compared verbatim.
type ARNError struct {
	ARN    string
	Reason error
}

func (e *ARNError) Error() string {
	return e.Reason.Error()
}

func (e *ARNError) Unwrap() []error {
	return []error{ErrMalformedARN, e.Reason}
}

// ServiceARN is a parsed ECS service ARN of the form
// arn:aws:ecs:<region>:<account>:service/<cluster>/<service>.
type ServiceARN struct {
	ARN         string
	ClusterName string
	ServiceName string
}

func (a ServiceARN) String() string {
	return a.ARN
}

// ParseServiceARN validates the structure of raw and extracts its cluster and service names.
func ParseServiceARN(raw string) (ServiceARN, error) {
	sections := strings.Split(raw, ":")
	switch {
	case len(sections) < arnSections:
		return ServiceARN{}, &ARNError{ARN: raw, Reason: ErrMissingSection}
	case len(sections) > arnSections:
		return ServiceARN{}, &ARNError{ARN: raw, Reason: ErrTooManySections}
	}

	path := strings.Split(sections[arnSections-1], "/")
	switch {
	case len(path) < pathSections:
		return ServiceARN{}, &ARNError{ARN: raw, Reason: ErrMissingPathSection}
	case len(path) > pathSections:
		return ServiceARN{}, &ARNError{ARN: raw, Reason: ErrTooManyPathSections}
	}

	if path[0] != servicePathPart {
		return ServiceARN{}, &ARNError{ARN: raw, Reason: ErrNotServicePath}
	}

	return ServiceARN{
		ARN:         raw,
		ClusterName: path[1],
		ServiceName: path[2],
	}, nil
}

// ParseServiceARNs parses every raw ARN in order and stops at the first malformed one.
func ParseServiceARNs(raws []string) ([]ServiceARN, error) {
	arns := make([]ServiceARN, 0, len(raws))
	for _, raw := range raws {
		arn, err := ParseServiceARN(raw)
		if err != nil {
			return nil, err
		}
		arns = append(arns, arn)
	}

	return arns, nil
}
