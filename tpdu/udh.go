package tpdu

import "fmt"

// Concat carries the concatenation information element of a multipart
// message part.
type Concat struct {
	Ref   uint16
	Total uint8
	Seq   uint8
}

// UDHSize calculates the size, in octets, of a user data header carrying
// the requested information elements. It is zero when no IE is required.
func UDHSize(includeLength, ported, requiresConcat bool) int {
	if !ported && !requiresConcat {
		return 0
	}
	n := 0
	if includeLength {
		n++
	}
	if ported {
		n += 2 + ieiAppPorting16Len
	}
	if requiresConcat {
		if concatUse16Bit {
			n += 2 + ieiConcat16Len
		} else {
			n += 2 + ieiConcat8Len
		}
	}
	return n
}

// generateUDH builds the user data header for one part of an outgoing
// message. The leading UDHL octet counts the content that follows it.
// The port IE is omitted when both ports are zero and the concatenation
// IE when total is 1; callers must not invoke this for a message that
// needs no header at all.
func generateUDH(part, total int, ref uint16, srcPort, dstPort int) ([]byte, error) {
	udh := []byte{0}

	if srcPort != 0 || dstPort != 0 {
		if srcPort != srcPort&0xFFFF || srcPort < 0 {
			return nil, fmt.Errorf("tpdu: source port %d outside 16-bit range", srcPort)
		}
		if dstPort != dstPort&0xFFFF || dstPort < 0 {
			return nil, fmt.Errorf("tpdu: destination port %d outside 16-bit range", dstPort)
		}
		udh = append(udh, ieiAppPorting16, ieiAppPorting16Len,
			byte(dstPort>>8), byte(dstPort),
			byte(srcPort>>8), byte(srcPort))
	}

	if total != 1 {
		if part < 1 || part > total {
			return nil, fmt.Errorf("tpdu: part %d of %d outside valid range", part, total)
		}
		if total > 0xFF {
			return nil, fmt.Errorf("tpdu: too many message parts: %d", total)
		}
		if concatUse16Bit {
			udh = append(udh, ieiConcat16, ieiConcat16Len, byte(ref>>8), byte(ref))
		} else {
			udh = append(udh, ieiConcat8, ieiConcat8Len, byte(ref))
		}
		udh = append(udh, byte(total), byte(part))
	}

	udh[0] = byte(len(udh) - 1)
	return udh, nil
}

// parseUDH walks the information elements of a received user data header,
// returning any concatenation info and port addressing found. Unrecognized
// IEs are skipped. The slice starts after the UDHL octet.
func parseUDH(content []byte) (concat *Concat, srcPort, dstPort int, err error) {
	for i := 0; i < len(content); {
		if i+2 > len(content) {
			return nil, 0, 0, fmt.Errorf("tpdu: truncated udh information element at %d", i)
		}
		iei, ieLen := content[i], int(content[i+1])
		i += 2
		if i+ieLen > len(content) {
			return nil, 0, 0, fmt.Errorf("tpdu: udh element 0x%02X overruns header", iei)
		}
		data := content[i : i+ieLen]
		i += ieLen

		switch iei {
		case ieiConcat8:
			if ieLen == ieiConcat8Len {
				concat = &Concat{Ref: uint16(data[0]), Total: data[1], Seq: data[2]}
			}
		case ieiConcat16:
			if ieLen == ieiConcat16Len {
				concat = &Concat{Ref: uint16(data[0])<<8 | uint16(data[1]), Total: data[2], Seq: data[3]}
			}
		case ieiAppPorting16:
			if ieLen == ieiAppPorting16Len {
				dstPort = int(data[0])<<8 | int(data[1])
				srcPort = int(data[2])<<8 | int(data[3])
			}
		}
	}
	return concat, srcPort, dstPort, nil
}
