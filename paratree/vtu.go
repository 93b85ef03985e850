package paratree

import "fmt"

// VTUFileName formats a per-rank VTU output name: "s<NNNN>-p<NNNN>-<name>.vtu",
// step and rank zero-padded to 4 digits, per spec.md §6. Serialization of
// the file's contents is an external collaborator; this just names it.
func VTUFileName(name string, step, rank int) string {
	return fmt.Sprintf("s%04d-p%04d-%s.vtu", step, rank, name)
}

// PVTUFileName formats the master PVTU name rank 0 writes to reference
// every per-rank VTU piece: "s<NNNN>-<name>.pvtu".
func PVTUFileName(name string, step int) string {
	return fmt.Sprintf("s%04d-%s.pvtu", step, name)
}
