package cases

import (
	"fmt"
	"log"
	"log/slog"
	"os"
)

func reportError(err error) {
	slog.Error("operation failed", slog.Any("err", err))
}

func logAndReturn(path string) error {
	if err := os.Remove(path); err != nil {
		log.Println("remove:", err)
		return err // Noncompliant [[secondary=-1]] {{error err is both logged and returned}}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		reportError(err)
		// Noncompliant@+1 [[secondary=-1]]
		return fmt.Errorf("read %s: %w", path, err)
	}

	if len(data) == 0 {
		err = fmt.Errorf("empty file %s", path)
		slog.Warn("check file", slog.Any("err", err))
		log.Printf("check file: %s", err) // Noncompliant [[secondary=-1]] {{error err is logged multiple times}}
	}

	_, err = os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	return nil
}
