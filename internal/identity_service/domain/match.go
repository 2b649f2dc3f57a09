package domain

import "strings"

// MatchPolicy decides whether sender belongs to member.
type MatchPolicy func(sender string, member Member) bool

// StrictMatch requires the sender to equal the work, mobile or WhatsApp number exactly.
// The batch backfill uses it.
func StrictMatch(sender string, member Member) bool {
	for _, n := range []struct {
		number string
		valid  bool
	}{
		{member.WorkNumber.String, member.WorkNumber.Valid},
		{member.MobileNumber.String, member.MobileNumber.Valid},
		{member.WhatsAppNumber.String, member.WhatsAppNumber.Valid},
	} {
		if n.valid && n.number == sender {
			return true
		}
	}
	return false
}

// LooseMatch accepts a sender contained in the mobile or WhatsApp number, so a sender
// without a country prefix still matches a stored international number. The work
// number is not consulted. Live intake uses it.
func LooseMatch(sender string, member Member) bool {
	if member.MobileNumber.Valid && strings.Contains(member.MobileNumber.String, sender) {
		return true
	}
	return member.WhatsAppNumber.Valid && strings.Contains(member.WhatsAppNumber.String, sender)
}

// Resolve returns the first member matching sender under policy.
// An empty sender never resolves.
func Resolve(sender string, members []Member, policy MatchPolicy) (Member, bool) {
	if sender == "" {
		return Member{}, false
	}
	for _, m := range members {
		if policy(sender, m) {
			return m, true
		}
	}
	return Member{}, false
}
