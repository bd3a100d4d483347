// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package document

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Load decodes a document from YAML and normalizes it.
func Load(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// LoadFile decodes a document from a YAML file.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	doc, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document from YAML bytes and normalizes it.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	normalize(&doc)
	if err := Validate(&doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// normalize fills in generated entry ids so unique-selection bookkeeping
// always has a stable key to exclude.
func normalize(doc *Document) {
	for _, col := range doc.Collections {
		for _, tbl := range col.Tables {
			for i, e := range tbl.Entries {
				if e.ID == "" {
					e.ID = tbl.ID + ":" + strconv.Itoa(i)
				}
			}
		}
	}
}
