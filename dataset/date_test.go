package dataset

import (
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		date     string
		expected int
	}{
		{"3500 BCE", -3500},
		{"1840 CE", 1840},
		{"900CE", 900},
		{"16th century CE", 1550},
		{"1st century CE", 50},
		{"2nd century BCE", -150},
		{"3rd century CE", 250},
		{"9th century BCE", -850},
		{"1840", 1840},
		{"900", 900},
		{"  3500 BCE  ", -3500},
	}

	for _, tt := range tests {
		if year := ParseDate(tt.date); year != tt.expected {
			t.Errorf("Incorrect year for '%s' - expected:%v, got:%v", tt.date, tt.expected, year)
		}
	}
}

func TestParseDateWithUnparseableDates(t *testing.T) {
	tests := []string{
		"",
		"unknown",
		"circa 3500",
		"3500 bce",
		"16th century",
		"50",
		"12345",
		"1840 CE ish",
	}

	for _, date := range tests {
		if year := ParseDate(date); year != 0 {
			t.Errorf("Expected year 0 for '%s', got %v", date, year)
		}
	}
}

func TestRadius(t *testing.T) {
	tests := []struct {
		year     int
		expected int
	}{
		{-5000, 12},
		{-9000, 12},
		{2000, 4},
		{2025, 4},
		{0, 5},
		{1000, 5},
		{-1000, 7},
	}

	for _, tt := range tests {
		if r := Radius(tt.year); r != tt.expected {
			t.Errorf("Incorrect radius for year %v - expected:%v, got:%v", tt.year, tt.expected, r)
		}
	}
}
