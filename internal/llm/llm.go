// Package llm wraps the external text-completion providers used for free-form chat.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrProvider = errors.New("llm: provider error")

const (
	DefaultAssistantName = "Sam"
	DefaultOrganization  = "VitalPoint"
)

// Seed primes a conversation: Instruction is the persona sent as the user's opening turn and
// Greeting is the model's primer reply.
type Seed struct {
	Instruction string
	Greeting    string
}

// Persona names the assistant and the organization it speaks for.
type Persona struct {
	AssistantName string
	Organization  string
}

// DefaultPersona returns Sam from VitalPoint.
func DefaultPersona() Persona {
	return Persona{AssistantName: DefaultAssistantName, Organization: DefaultOrganization}
}

// Seed builds the conversation seed for a patient. booked holds short descriptions of the
// patient's confirmed appointments and may be empty.
func (p Persona) Seed(name, email string, booked []string) Seed {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a friendly assistant who works for %s. ", p.AssistantName, p.Organization)
	fmt.Fprintf(&b, "The user's name is %s and their email is %s. ", name, email)
	b.WriteString("Your job is to help the user schedule doctor appointments and manage patient information. ")
	fmt.Fprintf(&b, "Only discuss topics related to %s and its medical appointments; politely decline anything else.", p.Organization)
	if len(booked) > 0 {
		b.WriteString(" The user has these confirmed appointments, recall them when asked:")
		for _, a := range booked {
			b.WriteString("\n- ")
			b.WriteString(a)
		}
	}

	greeting := fmt.Sprintf(
		"Hello %s! I'm ready to help you with your %s appointment needs. Would you like to see available doctors, schedule an appointment, or view your existing appointments?",
		name, p.Organization,
	)

	return Seed{Instruction: b.String(), Greeting: greeting}
}

// Completer answers a single utterance in the context of a seed.
// Failures wrap ErrProvider.
type Completer interface {
	Complete(ctx context.Context, seed Seed, utterance string) (string, error)
}

const CannedReply = "I'm here to assist you. What would you like to do?"

// CannedCompleter answers every utterance with the same text. Used when no provider is configured.
type CannedCompleter struct {
	Reply string
}

func (c CannedCompleter) Complete(ctx context.Context, seed Seed, utterance string) (string, error) {
	if c.Reply == "" {
		return CannedReply, nil
	}
	return c.Reply, nil
}

func providerError(provider string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrProvider, provider, err)
}
