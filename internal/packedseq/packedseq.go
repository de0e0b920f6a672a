// Package packedseq implements the half-byte nucleotide codec used to
// keep BS-seq reads in their T-rich orientation without ever
// unpacking to a byte-per-base intermediate. Sequences are stored two
// bases per byte, high nibble first, using the BAM 4-bit alphabet
// (A=1, C=2, G=4, T=8, N=15); the codec operates directly on
// sam.Seq.Seq, the []sam.Doublet buffer the hts library already uses.
package packedseq

import "github.com/grailbio/hts/sam"

// revcomp maps a doublet holding two packed 4-bit bases ("xx" or
// "x-", where '-' is the zero nibble used to pad an odd-length
// sequence's final byte) to the doublet holding the complement of
// each base with the two nibbles swapped. For example "AG" -> "CT";
// "A-" -> "-T". The caller must handle the odd-length "x-" case
// specially, since this table alone cannot know which side of the
// byte is padding.
var revcomp = [256]sam.Doublet{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	8, 136, 72, 0, 40, 0, 0, 0, 24, 0, 0, 0, 0, 0, 0, 248,
	4, 132, 68, 0, 36, 0, 0, 0, 20, 0, 0, 0, 0, 0, 0, 244,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	2, 130, 66, 0, 34, 0, 0, 0, 18, 0, 0, 0, 0, 0, 0, 242,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	1, 129, 65, 0, 33, 0, 0, 0, 17, 0, 0, 0, 0, 0, 0, 241,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
	15, 143, 79, 0, 47, 0, 0, 0, 31, 0, 0, 0, 0, 0, 0, 255,
}

// NumBytes returns the number of packed doublets needed to store a
// sequence of the given query length.
func NumBytes(qlen int) int {
	return (qlen + 1) / 2
}

// ReverseComplement reverse-complements, in place, the packed
// sequence seq holding a query of length qlen. It byte-reverses the
// buffer while mapping each doublet through revcomp (which both
// complements the two encoded bases and swaps their nibble order),
// then, for odd-length queries, shifts every doublet left by one
// nibble and ORs in the high nibble of its successor so the final
// padding nibble ends up zero again. Runs in O(n/2) doublet
// operations without ever unpacking to one base per byte.
func ReverseComplement(seq []sam.Doublet, qlen int) {
	n := NumBytes(qlen)
	buf := seq[:n]

	p1, p2 := 0, n-1
	for p2 > p1 {
		buf[p1], buf[p2] = revcomp[buf[p1]], revcomp[buf[p2]]
		buf[p1], buf[p2] = buf[p2], buf[p1]
		p1++
		p2--
	}
	if p1 == p2 {
		buf[p1] = revcomp[buf[p1]]
	}

	if qlen%2 == 1 {
		for i := 0; i < n-1; i++ {
			buf[i] = (buf[i] << 4) | (buf[i+1] >> 4)
		}
		buf[n-1] <<= 4
	}
}

// Concat writes into c the used prefix of a's packed sequence
// (length aUsed = len(c) - len(b)) followed by the reverse complement
// of all of b, as packed half-bytes, without ever unpacking either
// input. c must already be sized to hold NumBytes(aUsed+bLen) doublets.
// Unpacking c afterward yields a[0:aUsed] concatenated with
// reverse-complement(b[0:bLen]).
func Concat(a, b, c []sam.Doublet, aUsed, bLen int) {
	isAOdd := aUsed%2 == 1
	isBOdd := bLen%2 == 1
	cLen := aUsed + bLen
	isCOdd := cLen%2 == 1

	aNumBytes := NumBytes(aUsed)
	bNumBytes := NumBytes(bLen)

	copy(c[:aNumBytes], a[:aNumBytes])

	if isAOdd {
		// c looks like [ aa aa aa aa ] or [ aa aa aa a- ]
		c[aNumBytes-1] &= 0xf0
		if isBOdd {
			c[aNumBytes-1] |= revcomp[b[bNumBytes-1]]
		} else {
			c[aNumBytes-1] |= revcomp[b[bNumBytes-1]] >> 4
		}
	}

	if isCOdd {
		// c looks like [ aa aa aa aa ] or [ aa aa aa ab ]
		for i := 0; i < bNumBytes-1; i++ {
			c[aNumBytes+i] = (revcomp[b[bNumBytes-i-1]] << 4) | (revcomp[b[bNumBytes-i-2]] >> 4)
		}
		c[aNumBytes+bNumBytes-1] = revcomp[b[0]] << 4
		// c is now [ aa aa aa aa bb bb bb b- ] (a even; b odd)
		//        or [ aa aa aa ab bb bb bb b- ] (a odd; b odd)
	} else {
		bOffset := 0
		if isAOdd && isBOdd {
			bOffset = 1
		}
		for i := 0; i < bNumBytes-bOffset; i++ {
			c[aNumBytes+i] = revcomp[b[bNumBytes-i-1-bOffset]]
		}
		// c is now [ aa aa aa aa bb bb bb bb ] (a even and b even)
		//        or [ aa aa aa ab bb bb bb    ] (a odd and b odd)
	}
}
