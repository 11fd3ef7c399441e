// Copyright (c) 2026 Cuentas Claras. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package pagination provides the page-based navigation types shared by the
// list endpoints of the backend.
//
// # Overview
//
// Callers build [Params] and send them as query parameters; the backend
// answers with a [Page] carrying the rows and a [Meta] block.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the number of items per page if not specified.
	DefaultLimit = 20
	// MaxLimit is the upper bound the backend accepts.
	MaxLimit = 100
	// DefaultPage is the starting page (1-indexed).
	DefaultPage = 1
)

// Params holds the requested page and limit.
type Params struct {
	Page  int
	Limit int
}

// Normalize clamps invalid, negative or excessive values to the defaults.
func (p Params) Normalize() Params {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Values encodes the normalized params as "page" and "limit" query parameters.
func (p Params) Values() url.Values {
	p = p.Normalize()

	values := url.Values{}
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("limit", strconv.Itoa(p.Limit))
	return values
}

// Meta is the pagination metadata included in list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// NewMeta constructs pagination metadata, deriving TotalPages.
func NewMeta(page, limit, total int) Meta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Meta{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}
}

// HasNext reports whether another page follows this one.
func (m Meta) HasNext() bool {
	return m.Page < m.TotalPages
}

// Page is the list envelope returned by the backend.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}
