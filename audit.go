package sqlbind

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// Suspect is a string parameter whose value looks like an SQL injection attempt.
type Suspect struct {
	Name        string
	Value       string
	Fingerprint string
}

/*
Audit checks string parameter values with libinjection.

Bound values never become a part of SQL text, so a suspect is not
a vulnerability of the query itself. It rather signals hostile input
that may be worth logging or rejecting.
*/
func (q *Query) Audit() []Suspect {
	var suspects []Suspect
	for _, p := range q.params {
		if p.value.kind.Base() != KindString {
			continue
		}
		s, ok := p.value.Get().(string)
		if !ok {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(s); isSQLi {
			suspects = append(suspects, Suspect{
				Name:        p.name,
				Value:       s,
				Fingerprint: string(fingerprint),
			})
		}
	}
	return suspects
}
