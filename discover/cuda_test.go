package discover

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseCudaList(t *testing.T) {
	out := "0, NVIDIA A10G, 23028\n1, NVIDIA A10G, 23028\n"

	devices, err := parseCudaList(out)
	if err != nil {
		t.Fatal(err)
	}

	want := []CudaDevice{
		{Index: 0, Name: "NVIDIA A10G", MemoryMiB: 23028},
		{Index: 1, Name: "NVIDIA A10G", MemoryMiB: 23028},
	}
	if diff := cmp.Diff(want, devices); diff != "" {
		t.Errorf("parseCudaList mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCudaListEmpty(t *testing.T) {
	devices, err := parseCudaList("\n\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(devices) != 0 {
		t.Errorf("devices = %v, want none", devices)
	}
}

func TestParseCudaListMalformed(t *testing.T) {
	if _, err := parseCudaList("not a csv line"); !errors.Is(err, ErrCudaUnavailable) {
		t.Errorf("err = %v, want ErrCudaUnavailable", err)
	}
}
