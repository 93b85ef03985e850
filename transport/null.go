package transport

// Null is the degenerate P=1 transport: every cross-rank call is
// unreachable by construction (a single-rank tree never has a peer to
// balance across a border with or ghost-exchange with), so Send/Recv
// report ErrNoTransport rather than silently succeeding.
type Null struct{}

func (Null) Rank() int { return 0 }
func (Null) Size() int { return 1 }

func (Null) Send(int, MessageTag, []byte) error       { return ErrNoTransport }
func (Null) Recv(int, MessageTag) ([]byte, error)     { return nil, ErrNoTransport }
func (Null) AllReduceAnd(local bool) (bool, error)    { return local, nil }
func (Null) Barrier() error                           { return nil }
