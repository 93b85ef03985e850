package paratree

import (
	"errors"

	"github.com/adaptivemesh/go-pablo/dim"
	"github.com/adaptivemesh/go-pablo/octant"
	"github.com/adaptivemesh/go-pablo/octree"
	"github.com/adaptivemesh/go-pablo/pabloerrors"
	"github.com/adaptivemesh/go-pablo/transport"
	"github.com/adaptivemesh/go-pablo/wire"
)

// crossBorderCoarsen implements spec.md §4.E.2 step 2 and the design note
// "cross-border coarsening": a family straddling ranks r and r+1 is
// detected by r probing r+1 for the trailing members it's missing. Every
// rank r < size-1 is the sole initiator for the (r, r+1) pair; r+1 only
// ever responds. Three messages settle one pair per adapt call: probe
// (r -> r+1), response (r+1 -> r), ack (r -> r+1) — matching the note's
// two-phase protocol, with the ack as the commit step so r+1 never drops
// octants on a family that r+1 turned out not to complete.
func (pt *ParallelTree) crossBorderCoarsen() error {
	if pt.size == 1 {
		return nil
	}
	g := dim.Get(pt.d())
	nChildren := g.NChildren

	var probe familyProbe
	if pt.rank+1 < pt.size {
		probe = pt.buildFamilyProbe(nChildren)
		if err := pt.sendFamilyProbe(pt.rank+1, probe); err != nil {
			return err
		}
	}

	if pt.rank > 0 {
		incoming, err := pt.recvFamilyProbe(pt.rank - 1)
		if err != nil {
			return err
		}
		shipped, matched := pt.resolveFamilyProbe(incoming, nChildren)
		if err := pt.sendFamilyResponse(pt.rank-1, shipped, matched); err != nil {
			return err
		}

		applied, err := pt.recvFamilyAck(pt.rank - 1)
		if err != nil {
			return err
		}
		if matched && applied {
			pt.local.DropLeading(len(shipped))
		}
	}

	if pt.rank+1 < pt.size {
		shipped, matched, err := pt.recvFamilyResponse(pt.rank + 1)
		if err != nil {
			return err
		}
		applied := probe.have && matched && len(shipped) == probe.needed
		if applied {
			group := append(append([]octant.Octant(nil), probe.localTail...), shipped...)
			father := octree.CombineFamily(group)
			pt.local.DropTrailing(len(probe.localTail))
			pt.local.AppendOctant(father)
		}
		if err := pt.sendFamilyAck(pt.rank+1, applied); err != nil {
			return err
		}
	}
	return nil
}

type familyProbe struct {
	have      bool
	father    octant.Octant
	needed    int
	localTail []octant.Octant
}

// buildFamilyProbe inspects this rank's trailing octants for a partial
// family whose father matches the last octant's BuildFather — the only
// candidate a right-neighbor exchange could complete, since families are
// contiguous in Morton order and the border is the rightmost point of
// this rank's range.
func (pt *ParallelTree) buildFamilyProbe(nChildren int) familyProbe {
	octants := pt.local.Octants()
	if len(octants) == 0 {
		return familyProbe{}
	}
	last := octants[len(octants)-1]
	if last.Level == 0 {
		return familyProbe{}
	}
	father := last.BuildFather()

	var tail []octant.Octant
	for i := len(octants) - 1; i >= 0; i-- {
		if !octants[i].BuildFather().Equal(father) {
			break
		}
		if octants[i].Marker > -1 || octants[i].Flags.NotBalance {
			break
		}
		tail = append([]octant.Octant{octants[i]}, tail...)
	}
	if len(tail) == 0 || len(tail) >= nChildren {
		return familyProbe{}
	}
	return familyProbe{have: true, father: father, needed: nChildren - len(tail), localTail: tail}
}

// resolveFamilyProbe checks whether this rank's leading octants complete
// the probed family: same father, contiguous from index 0, all eligible.
func (pt *ParallelTree) resolveFamilyProbe(p familyProbe, nChildren int) (shipped []octant.Octant, matched bool) {
	if !p.have {
		return nil, false
	}
	octants := pt.local.Octants()
	if len(octants) < p.needed {
		return nil, false
	}
	head := octants[:p.needed]
	for _, o := range head {
		if !o.BuildFather().Equal(p.father) {
			return nil, false
		}
		if o.Marker > -1 || o.Flags.NotBalance {
			return nil, false
		}
	}
	return append([]octant.Octant(nil), head...), true
}

func (pt *ParallelTree) sendFamilyProbe(to int, p familyProbe) error {
	buf := wire.NewBuffer()
	buf.WriteInt8(boolToInt8(p.have))
	if err := buf.WriteOctants([]octant.Octant{p.father}); err != nil {
		return err
	}
	buf.WriteUint64(uint64(p.needed))
	return pt.sendTagged(to, buf.Bytes())
}

func (pt *ParallelTree) recvFamilyProbe(from int) (familyProbe, error) {
	data, err := pt.recvTagged(from)
	if err != nil {
		return familyProbe{}, err
	}
	buf := wire.NewBufferFromBytes(data)
	have, err := buf.ReadInt8()
	if err != nil {
		return familyProbe{}, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	fathers, err := buf.ReadOctants()
	if err != nil {
		return familyProbe{}, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	needed, err := buf.ReadUint64()
	if err != nil {
		return familyProbe{}, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	p := familyProbe{have: have != 0, needed: int(needed)}
	if len(fathers) == 1 {
		p.father = fathers[0]
	}
	return p, nil
}

func (pt *ParallelTree) sendFamilyResponse(to int, shipped []octant.Octant, matched bool) error {
	buf := wire.NewBuffer()
	buf.WriteInt8(boolToInt8(matched))
	if err := buf.WriteOctants(shipped); err != nil {
		return err
	}
	return pt.sendTagged(to, buf.Bytes())
}

func (pt *ParallelTree) recvFamilyResponse(from int) (shipped []octant.Octant, matched bool, err error) {
	data, err := pt.recvTagged(from)
	if err != nil {
		return nil, false, err
	}
	buf := wire.NewBufferFromBytes(data)
	m, err := buf.ReadInt8()
	if err != nil {
		return nil, false, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	octants, err := buf.ReadOctants()
	if err != nil {
		return nil, false, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	return octants, m != 0, nil
}

func (pt *ParallelTree) sendFamilyAck(to int, applied bool) error {
	buf := wire.NewBuffer()
	buf.WriteInt8(boolToInt8(applied))
	return pt.sendTagged(to, buf.Bytes())
}

func (pt *ParallelTree) recvFamilyAck(from int) (bool, error) {
	data, err := pt.recvTagged(from)
	if err != nil {
		return false, err
	}
	v, err := wire.NewBufferFromBytes(data).ReadInt8()
	if err != nil {
		return false, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	return v != 0, nil
}

func (pt *ParallelTree) sendTagged(to int, payload []byte) error {
	tag := transport.MessageTag{SourceRank: pt.rank, DestRank: to, ByteLength: len(payload)}
	if err := pt.transport.Send(to, tag, payload); err != nil {
		return errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	return nil
}

func (pt *ParallelTree) recvTagged(from int) ([]byte, error) {
	tag := transport.MessageTag{SourceRank: from, DestRank: pt.rank}
	data, err := pt.transport.Recv(from, tag)
	if err != nil {
		return nil, errors.Join(pabloerrors.ErrTransportFailed, err)
	}
	return data, nil
}

func boolToInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}
