package wire

import "github.com/adaptivemesh/go-pablo/dim"

func dimFromUint8(v uint8) dim.Dim {
	return dim.Dim(v)
}
