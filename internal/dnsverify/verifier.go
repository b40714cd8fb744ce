// Package dnsverify implements the DNS TXT ownership proof for custom
// domains. A domain owner publishes a TXT record under a well known label
// and the verifier checks it contains the token issued at registration.
package dnsverify

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/faithinsite/core/internal/errs"
)

const (
	// VerificationLabel is prepended to the hostname to form the TXT
	// record name, e.g. _fi-verify.blog.example.com.
	VerificationLabel = "_fi-verify"

	// ValuePrefix marks the platform's records among unrelated TXT
	// entries on the same name.
	ValuePrefix = "fi-verify="

	defaultTimeout = 5 * time.Second
)

var (
	ErrLookupFailed  = errors.New("TXT record lookup failed")
	ErrTokenMismatch = errors.New("no TXT record carries the expected verification token")
)

// TXTResolver is the lookup dependency of the verifier. *net.Resolver
// satisfies it.
type TXTResolver interface {
	LookupTXT(ctx context.Context, name string) ([]string, error)
}

// Verifier checks domain ownership through DNS. Lookups are bounded by the
// configured timeout and are not retried, the caller decides when to try
// again.
type Verifier struct {
	resolver TXTResolver
	timeout  time.Duration
}

func New(resolver TXTResolver, timeout time.Duration) *Verifier {
	if resolver == nil {
		resolver = net.DefaultResolver
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Verifier{
		resolver: resolver,
		timeout:  timeout,
	}
}

// RecordName returns the TXT record name the domain owner must publish for
// the given hostname.
func RecordName(hostname string) string {
	return VerificationLabel + "." + hostname
}

// RecordValue returns the TXT record value expected for the given token.
func RecordValue(token string) string {
	return ValuePrefix + token
}

// Verify looks up the verification record of the hostname and checks one of
// the returned values matches the token exactly. A failed lookup and a
// missing token are reported as distinct errors so the caller can tell an
// unpublished record from an infrastructure problem.
func (v *Verifier) Verify(ctx context.Context, hostname, token string) error {
	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	records, err := v.resolver.LookupTXT(ctx, RecordName(hostname))
	if err != nil {
		return errs.Wrap(ErrLookupFailed, err)
	}

	want := RecordValue(token)
	for _, record := range records {
		if record == want {
			return nil
		}
	}

	return ErrTokenMismatch
}
