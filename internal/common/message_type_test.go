package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMessageType_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		mt    MessageType
		valid bool
	}{
		{"text is valid", MessageTypeText, true},
		{"photo is valid", MessageTypePhoto, true},
		{"video is valid", MessageTypeVideo, true},
		{"location is valid", MessageTypeLocation, true},
		{"contact is valid", MessageTypeContact, true},
		{"file is valid", MessageTypeFile, true},
		{"empty is invalid", MessageType(""), false},
		{"unknown is invalid", MessageType("sticker"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.mt.IsValid())
		})
	}
}

func TestMessageType_RequiresUpload(t *testing.T) {
	tests := []struct {
		name    string
		mt      MessageType
		uploads bool
	}{
		{"photo uploads", MessageTypePhoto, true},
		{"video uploads", MessageTypeVideo, true},
		{"file uploads", MessageTypeFile, true},
		{"text does not upload", MessageTypeText, false},
		{"location synthesizes locally", MessageTypeLocation, false},
		{"contact synthesizes locally", MessageTypeContact, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.uploads, tt.mt.RequiresUpload())
		})
	}
}

func TestMessageType_String(t *testing.T) {
	assert.Equal(t, "text", MessageTypeText.String())
	assert.Equal(t, "location", MessageTypeLocation.String())
}
