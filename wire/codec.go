// Package wire implements the typed communication buffer spec.md §4.F
// treats as an opaque byte stream between peers: write<T> followed by
// read<T> in the same collective is a pure round trip. Scalars use raw
// little-endian encoding; structured aggregates (octant batches, marker
// lists, partition tables) use a canonical CBOR encoding so that two ranks
// serializing the same value always produce byte-identical bytes — this
// mirrors how the source wraps fxamacker/cbor/v2 behind a single
// package-level codec (massifs.NewCBORCodec) rather than hand-rolling a
// binary layout for every record type.
package wire

import "github.com/fxamacker/cbor/v2"

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	encOpts := cbor.CanonicalEncOptions()
	var err error
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(err)
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(err)
	}
}

func cborMarshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

func cborUnmarshal(b []byte, v any) error {
	return decMode.Unmarshal(b, v)
}
