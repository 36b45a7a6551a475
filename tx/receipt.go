// Copyright (c) 2026 The Attesta developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

// Receipt represents the result of one committed ledger operation.
type Receipt struct {
	// events produced, in emission order
	Events Events
}

// Find returns the first event with the given name, or nil.
func (r *Receipt) Find(name string) Event {
	for _, ev := range r.Events {
		if ev.EventName() == name {
			return ev
		}
	}
	return nil
}
