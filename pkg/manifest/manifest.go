// Package manifest retrieves and validates the remote document that lists the
// media files the agent should mirror.
package manifest

import (
	"encoding/json"
	"fmt"
)

// MediaItem is a single entry in the manifest.
type MediaItem struct {
	// ResourceURL is both the path of the file on the media server, relative
	// to the server's base URL, and the path of the file relative to the
	// output folder. It may contain subdirectories.
	ResourceURL string `json:"resource_url"`
}

// Manifest is an ordered list of media files. Files are processed in the
// order they appear.
type Manifest struct {
	Multimedia []MediaItem `json:"multimedia"`
}

// Parse decodes and validates a manifest document.
func Parse(body []byte) (Manifest, error) {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return Manifest{}, &ParseError{Cause: err}
	}

	obj, ok := doc.(map[string]interface{})
	if !ok {
		return Manifest{}, &InvalidError{Reason: "document is not an object"}
	}

	list, ok := obj["multimedia"]
	if !ok {
		return Manifest{}, &InvalidError{Reason: `missing "multimedia" field`}
	}

	items, ok := list.([]interface{})
	if !ok {
		return Manifest{}, &InvalidError{Reason: `"multimedia" is not a list`}
	}

	if len(items) == 0 {
		return Manifest{}, &InvalidError{Reason: "multimedia list is empty"}
	}

	// The shape has been checked, so decode again into the typed form.
	var m Manifest
	if err := json.Unmarshal(body, &m); err != nil {
		return Manifest{}, &InvalidError{Reason: fmt.Sprintf("malformed entry: %s", err)}
	}
	return m, nil
}
