// Package discover probes the machine for CUDA devices. Training requires
// a GPU; everything here shells out to nvidia-smi rather than linking any
// driver library.
package discover

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var ErrCudaUnavailable = errors.New("cuda is not available")

const smiTimeout = 10 * time.Second

// CudaDevice is one GPU visible to the driver.
type CudaDevice struct {
	Index     int
	Name      string
	MemoryMiB int
}

// CudaDevices lists visible CUDA devices, or ErrCudaUnavailable when
// nvidia-smi is missing or reports none.
func CudaDevices(ctx context.Context) ([]CudaDevice, error) {
	smi, err := exec.LookPath("nvidia-smi")
	if err != nil {
		return nil, fmt.Errorf("%w: nvidia-smi not found", ErrCudaUnavailable)
	}

	ctx, cancel := context.WithTimeout(ctx, smiTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, smi,
		"--query-gpu=index,name,memory.total",
		"--format=csv,noheader,nounits").Output()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCudaUnavailable, err)
	}

	devices, err := parseCudaList(string(out))
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no devices reported", ErrCudaUnavailable)
	}
	return devices, nil
}

func parseCudaList(out string) ([]CudaDevice, error) {
	var devices []CudaDevice
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, ",", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("%w: unexpected nvidia-smi output %q", ErrCudaUnavailable, line)
		}

		index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return nil, fmt.Errorf("%w: bad device index in %q", ErrCudaUnavailable, line)
		}
		memory, _ := strconv.Atoi(strings.TrimSpace(fields[2]))

		devices = append(devices, CudaDevice{
			Index:     index,
			Name:      strings.TrimSpace(fields[1]),
			MemoryMiB: memory,
		})
	}
	return devices, nil
}
