package zarchive

import "os"

// OutputSink receives the byte stream a Writer produces. NewOutputFile is
// called exactly once, with partIndex -1, before any data is written;
// WriteOutputData is then called once per emitted range, in order.
//
// Implementations that only ever write a single output file (the common
// case) can ignore partIndex entirely.
type OutputSink interface {
	NewOutputFile(partIndex int) error
	WriteOutputData(data []byte) error
}

// FileOutputSink is an OutputSink that writes to a single *os.File.
type FileOutputSink struct {
	file *os.File
}

// NewFileOutputSink wraps f as an OutputSink.
func NewFileOutputSink(f *os.File) *FileOutputSink {
	return &FileOutputSink{file: f}
}

// NewOutputFile is a no-op: the file is already open.
func (s *FileOutputSink) NewOutputFile(partIndex int) error {
	return nil
}

// WriteOutputData writes data to the underlying file.
func (s *FileOutputSink) WriteOutputData(data []byte) error {
	_, err := s.file.Write(data)
	return err
}
