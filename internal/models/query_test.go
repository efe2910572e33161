package models

import (
	"errors"
	"testing"
)

func TestAskRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     *AskRequest
		wantErr bool
	}{
		{"empty question", &AskRequest{Question: ""}, true},
		{"blank question", &AskRequest{Question: "  \n\t"}, true},
		{"valid question", &AskRequest{Question: "what is wali?"}, false},
		{"trims conversation id", &AskRequest{Question: "x", ConversationID: " c1 "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if tt.name == "trims conversation id" && tt.req.ConversationID != "c1" {
				t.Errorf("ConversationID = %q", tt.req.ConversationID)
			}
		})
	}
}

func TestDocumentInput_Validate(t *testing.T) {
	tests := []struct {
		name    string
		in      *DocumentInput
		wantErr bool
	}{
		{"missing name", &DocumentInput{Content: "hello"}, true},
		{"blank content", &DocumentInput{Name: "a.txt", Content: "\n\n  "}, true},
		{"valid", &DocumentInput{Name: " a.txt ", Content: "hello"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.in.Name != "a.txt" {
				t.Errorf("Name = %q, want trimmed", tt.in.Name)
			}
		})
	}
}
