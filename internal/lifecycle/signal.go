package lifecycle

import (
	"errors"
	"fmt"
	"os"
)

func signalPID(pid int32, sig os.Signal) error {
	proc, err := os.FindProcess(int(pid))
	if err != nil {
		return err
	}
	if err := proc.Signal(sig); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return nil
		}
		return err
	}
	return nil
}

// signalAll signals every pid and joins the failures.
func signalAll(send func(int32, os.Signal) error, pids []int32, sig os.Signal) error {
	var errs []error
	for _, pid := range pids {
		if pid == int32(os.Getpid()) {
			continue
		}
		if err := send(pid, sig); err != nil {
			errs = append(errs, fmt.Errorf("signal pid %d: %w", pid, err))
		}
	}
	return errors.Join(errs...)
}
