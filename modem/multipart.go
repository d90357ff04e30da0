package modem

import "sort"

// multipartKey identifies the multipart message a part belongs to: parts
// match when both the originator and the concat reference agree.
type multipartKey struct {
	originator string
	ref        uint16
}

// reassembler buffers parts of concatenated messages until every part of a
// set has arrived, then hands the rebuilt message out exactly once.
type reassembler struct {
	pending map[multipartKey][]*IncomingMessage
}

func newReassembler() *reassembler {
	return &reassembler{pending: make(map[multipartKey][]*IncomingMessage)}
}

// add files a multipart part under its group. A part with a sequence number
// the group already holds is a duplicate and is dropped; add reports
// whether the part was kept.
func (r *reassembler) add(part *IncomingMessage) bool {
	key := multipartKey{originator: part.Originator, ref: part.Concat.Ref}
	group := r.pending[key]
	for _, existing := range group {
		if existing.Concat.Seq == part.Concat.Seq {
			return false
		}
	}
	r.pending[key] = append(group, part)
	return true
}

// drain removes every complete group and returns the reassembled messages.
// Parts join in sequence order regardless of arrival order; the combined
// message reports memory index -1 and lists its parts' indexes so they can
// all be deleted once the message is consumed.
func (r *reassembler) drain() []*IncomingMessage {
	var out []*IncomingMessage
	for key, group := range r.pending {
		if len(group) != int(group[0].Concat.Total) {
			continue
		}
		parts := append([]*IncomingMessage{}, group...)
		sort.Slice(parts, func(i, j int) bool { return parts[i].Concat.Seq < parts[j].Concat.Seq })

		first := parts[0]
		combined := &IncomingMessage{
			MemIndex:    -1,
			MemLocation: first.MemLocation,
			Originator:  first.Originator,
			SMSC:        first.SMSC,
			Time:        first.Time,
			Encoding:    first.Encoding,
			PID:         first.PID,
			Concat:      nil,
		}
		for _, p := range parts {
			combined.Text += p.Text
			combined.Binary = append(combined.Binary, p.Binary...)
			combined.mpMemIndexes = append(combined.mpMemIndexes, p.MemIndex)
		}
		out = append(out, combined)
		delete(r.pending, key)
	}
	return out
}
