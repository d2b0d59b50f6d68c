// Command zarchive packs a directory into a ZArchive file or extracts one
// back to a directory, auto-detecting the operation from the input path.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/exzap/zarchive"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  zarchive <input_path> [output_path]")
		fmt.Fprintln(os.Stderr, "  zarchive -inspect <archive_path>")
		fmt.Fprintln(os.Stderr)
		fmt.Fprintln(os.Stderr, "If input_path is a directory, output_path is the archive file to write.")
		fmt.Fprintln(os.Stderr, "If input_path is a ZArchive file, output_path is the extraction directory.")
		fmt.Fprintln(os.Stderr, "output_path is optional in both cases.")
	}
	inspect := flag.Bool("inspect", false, "print summary statistics for an archive instead of extracting it")
	workers := flag.Int("workers", 4, "concurrent extraction workers")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(0)
	}
	if *inspect {
		if err := runInspect(args[0]); err != nil {
			log.Fatal(err)
		}
		return
	}

	input := args[0]
	var output string
	if len(args) > 1 {
		output = args[1]
	}
	if len(args) > 2 {
		log.Fatal("too many paths specified")
	}

	fi, err := os.Stat(input)
	if err != nil {
		log.Fatalf("input path is not a valid file or directory: %v", err)
	}

	if fi.IsDir() {
		if output == "" {
			output = strings.TrimSuffix(input, string(filepath.Separator)) + ".zar"
			fmt.Printf("Outputting to: %s\n", output)
		}
		if err := runPack(input, output); err != nil {
			os.Remove(output)
			log.Fatal(err)
		}
		return
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "_extracted"
		fmt.Printf("Extracting to: %s\n", output)
	}
	if err := runExtract(input, output, *workers); err != nil {
		log.Fatal(err)
	}
}

func runPack(inputDir, outputFile string) error {
	if _, err := os.Stat(outputFile); err == nil {
		return fmt.Errorf("the output file already exists: %s", outputFile)
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return err
	}
	defer f.Close()

	w, err := zarchive.NewWriter(zarchive.NewFileOutputSink(f))
	if err != nil {
		return err
	}
	if err := zarchive.PackDir(w, inputDir); err != nil {
		return err
	}
	return w.Finalize()
}

func runExtract(inputFile, outputDir string, workers int) error {
	if fi, err := os.Stat(outputDir); err == nil && !fi.IsDir() {
		return fmt.Errorf("the specified output path is not a valid directory: %s", outputDir)
	}
	r, err := zarchive.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	return zarchive.ExtractDir(context.Background(), r, outputDir, zarchive.ExtractDirOptions{Concurrency: workers})
}

func runInspect(inputFile string) error {
	r, err := zarchive.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer r.Close()

	info := r.Info()
	fmt.Printf("digest:              %s\n", info.Digest)
	fmt.Printf("files:               %d\n", info.FileCount)
	fmt.Printf("directories:         %d\n", info.DirectoryCount)
	fmt.Printf("uncompressed size:   %d\n", info.TotalSize)
	fmt.Printf("on-disk size:        %d\n", info.OnDiskSize)
	fmt.Printf("compression ratio:   %.4f\n", info.CompressionRatio)
	return nil
}
