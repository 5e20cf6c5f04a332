package dmf

// The nucleotide alphabet, in the order substitution keys are enumerated.
var Alphabet = []byte{'A', 'C', 'G', 'T'}

// SubsFrom lists every ref->alt substitution over alphabet with ref != alt,
// ref-major. For an alphabet given in sorted order the result is sorted.
func SubsFrom(alphabet []byte) []string {
	subs := make([]string, 0, len(alphabet)*(len(alphabet)-1))
	for _, ref := range alphabet {
		for _, alt := range alphabet {
			if ref == alt {
				continue
			}
			subs = append(subs, string([]byte{ref, alt}))
		}
	}
	return subs
}

// PairKeysFrom lists every concatenation of two substitutions from SubsFrom,
// first-substitution-major.
func PairKeysFrom(alphabet []byte) []string {
	subs := SubsFrom(alphabet)
	keys := make([]string, 0, len(subs)*len(subs))
	for _, s1 := range subs {
		for _, s2 := range subs {
			keys = append(keys, s1+s2)
		}
	}
	return keys
}

func Subs() []string {
	return SubsFrom(Alphabet)
}

// PairKeys returns the 144 row labels shared by every fingerprint matrix.
func PairKeys() []string {
	return PairKeysFrom(Alphabet)
}
