package progress

import (
	"sort"
	"time"

	"bounceBackAPI/internal/types/contact"
	"bounceBackAPI/internal/types/isotime"
	"bounceBackAPI/internal/types/snapshot"
)

const TopContactsLimit = 5

// RankContacts orders contacts reached since recentSince first, then by
// descending priority, then by name and id. The input is not modified.
func RankContacts(contacts []contact.Contact, recentSince time.Time) []contact.Contact {
	ranked := make([]contact.Contact, len(contacts))
	copy(ranked, contacts)

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		ar, br := contactedSince(a, recentSince), contactedSince(b, recentSince)
		if ar != br {
			return ar
		}
		if pa, pb := a.PriorityTag.Rank(), b.PriorityTag.Rank(); pa != pb {
			return pa > pb
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
	return ranked
}

func contactedSince(c contact.Contact, since time.Time) bool {
	return c.LastContacted.Valid() && !c.LastContacted.Before(since)
}

func buildContacts(contacts []contact.Contact, weekAgo time.Time) snapshot.ContactSection {
	ranked := RankContacts(contacts, weekAgo)
	if len(ranked) > TopContactsLimit {
		ranked = ranked[:TopContactsLimit]
	}

	top := make([]snapshot.TopContact, 0, len(ranked))
	for _, c := range ranked {
		tc := snapshot.TopContact{
			Name:         c.Name,
			Relationship: c.Relationship,
			SupportTypes: c.SupportType,
			Priority:     string(c.PriorityTag),
		}
		if tc.SupportTypes == nil {
			tc.SupportTypes = []string{}
		}
		if tc.Priority == "" {
			tc.Priority = string(contact.PriorityLow)
		}
		if c.LastContacted.Valid() {
			s := isotime.Format(c.LastContacted.Time)
			tc.LastContacted = &s
		}
		top = append(top, tc)
	}

	active := 0
	for _, c := range contacts {
		if contactedSince(c, weekAgo) {
			active++
		}
	}

	return snapshot.ContactSection{
		TopContacts:   top,
		TotalActive:   active,
		TotalContacts: len(contacts),
	}
}
