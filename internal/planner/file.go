package planner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"
)

// ParseRequest decodes a request written in YAML or JSON. Unknown keys are
// rejected.
func ParseRequest(data []byte) (Request, error) {
	var req Request
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return Request{}, errors.New("empty request")
		}
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// ReadRequest loads a request file; "-" reads stdin.
func ReadRequest(path string, stdin io.Reader) (Request, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return Request{}, fmt.Errorf("read request: %w", err)
	}
	return ParseRequest(data)
}
