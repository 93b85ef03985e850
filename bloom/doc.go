package bloom

/*

# Ghost-Morton membership prefilter

This package provides a small probabilistic prefilter over the 8-byte Morton
codes in a rank's ghost layer, a direct narrowing of the source's own Bloom
primitives (`go-merklelog/bloom`), which indexed 32-byte log values in four
parallel filters persisted alongside a massif.

Two differences in shape follow from the domain:

  - One filter, not four: a ghost layer is one flat sorted slice of Morton
    codes, not four independently-addressed element families.
  - In-memory, not persisted: the filter is rebuilt every time paratree
    rebuilds its ghost halo (spec.md §4.D.3) and discarded with it; there is
    no on-disk region to version.

## What a Bloom filter is (and is not)

A Bloom filter is a probabilistic prefilter:

  - If the filter says "definitely not present", the Morton code is not a
    ghost, and the caller can skip the binary search entirely.
  - If the filter says "maybe present", the caller still needs the real
    binary search — false positives are possible.

It is an I/O/CPU optimization only, never a source of truth.

## Indexing and bit numbering

Membership uses double hashing (Kirsch-Mitzenmacher): two independent hashes
of the Morton code combine to derive k probe positions, avoiding k
independent hash computations per operation. Bit numbering is LSB-0 within
each byte, matching the source's own convention.

*/
