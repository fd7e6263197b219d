package ir

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// DomainCFGSet is the domain prefix for set digests.
// The version suffix allows migrating the algorithm later.
const DomainCFGSet = "cfgset/set/v2"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Digest computes the content digest of a set record. Two records have
// equal digests iff they hold the same IDs, addresses, names and order;
// names are compared as raw bytes.
func Digest(rec CFGSetRecord) string {
	return hashWithDomain(DomainCFGSet, appendDigestInput(nil, rec))
}

// appendDigestInput encodes rec so that distinct records never share an
// encoding. Integers are big-endian; names carry a presence byte and a
// length prefix.
//
//	set id [16] | count u64 | { cfg id [16] | address u64 | 0x00 | 0x01 len u64 name }*
func appendDigestInput(b []byte, rec CFGSetRecord) []byte {
	b = append(b, rec.ID[:]...)
	b = binary.BigEndian.AppendUint64(b, uint64(len(rec.CFGs)))
	for _, c := range rec.CFGs {
		b = append(b, c.ID[:]...)
		b = binary.BigEndian.AppendUint64(b, c.Address.Get())
		if c.ProcedureName == nil {
			b = append(b, 0x00)
			continue
		}
		b = append(b, 0x01)
		b = binary.BigEndian.AppendUint64(b, uint64(len(*c.ProcedureName)))
		b = append(b, *c.ProcedureName...)
	}
	return b
}
