// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConferenceRecord describes one conference or talk listed on the site.
type ConferenceRecord struct {
	// Title is the conference name. Required.
	Title string `json:"title" yaml:"title" toml:"title"`

	// URL links the title. Empty renders the title as plain text.
	URL string `json:"url,omitempty" yaml:"url,omitempty" toml:"url,omitempty"`

	// Date is a textual descriptor: "20 September 2025" or a day range within
	// one month such as "19-20 January 2026".
	Date string `json:"date" yaml:"date" toml:"date"`

	Location    string `json:"location" yaml:"location" toml:"location"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

// ConferenceList is the on-disk shape of the conference dataset.
type ConferenceList struct {
	Conferences []ConferenceRecord `json:"conferences" yaml:"conferences" toml:"conferences"`
}
