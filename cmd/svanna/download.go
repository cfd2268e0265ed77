package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// GENCODE FTP URLs
const (
	gencodeBaseURL = "https://ftp.ebi.ac.uk/pub/databases/gencode/Gencode_human/release_46"
	gencodeVersion = "v46"
)

// gencodeGTFURL returns the GTF URL for the given assembly.
func gencodeGTFURL(assembly string) string {
	if strings.EqualFold(assembly, "GRCh37") {
		return fmt.Sprintf("%s/GRCh37_mapping/gencode.%slift37.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
	}
	return fmt.Sprintf("%s/gencode.%s.basic.annotation.gtf.gz", gencodeBaseURL, gencodeVersion)
}

func newDownloadCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Download GENCODE gene annotations",
		Long: `Download the GENCODE basic gene annotation GTF used by 'svanna ingest'.

Files are stored in ~/.svanna/<assembly>/ unless --output is given.`,
		Example: `  svanna download
  svanna download --assembly GRCh37
  svanna download --output /data/gencode`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownload(cmd, viper.GetString(keyAssembly), outputDir)
		},
	}
	cmd.Flags().StringVar(&outputDir, "output", "", "Output directory (default: ~/.svanna/)")
	return cmd
}

func runDownload(cmd *cobra.Command, assembly, outputDir string) error {
	if outputDir == "" {
		dir, err := dataDir()
		if err != nil {
			return err
		}
		outputDir = dir
	}

	destDir := filepath.Join(outputDir, strings.ToLower(assembly))
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", destDir, err)
	}

	gtfURL := gencodeGTFURL(assembly)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Downloading GENCODE %s annotations for %s...\n", gencodeVersion, assembly)
	fmt.Fprintf(out, "Destination: %s\n\n", destDir)

	if err := downloadFile(out, gtfURL, filepath.Join(destDir, filepath.Base(gtfURL))); err != nil {
		return fmt.Errorf("downloading GTF: %w", err)
	}

	fmt.Fprintf(out, "\nDownload complete!\n")
	fmt.Fprintf(out, "To load the genes into the feature store, run:\n")
	fmt.Fprintf(out, "  svanna ingest --assembly %s\n", assembly)
	return nil
}

// downloadFile downloads a file from URL to the destination path with progress.
func downloadFile(out io.Writer, url, destPath string) error {
	if info, err := os.Stat(destPath); err == nil {
		fmt.Fprintf(out, "  %s already exists (%s), skipping\n", filepath.Base(destPath), formatSize(info.Size()))
		return nil
	}

	fmt.Fprintf(out, "  Downloading %s...\n", filepath.Base(destPath))
	logger.Debug("downloading", zap.String("url", url), zap.String("dest", destPath))

	client := &http.Client{
		Timeout: 30 * time.Minute,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %s", resp.Status)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}

	var downloaded int64
	pw := &progressWriter{
		out:        out,
		total:      resp.ContentLength,
		downloaded: &downloaded,
		lastPrint:  time.Now(),
	}

	_, err = io.Copy(f, io.TeeReader(resp.Body, pw))
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename file: %w", err)
	}

	fmt.Fprintf(out, "    Done: %s\n", formatSize(downloaded))
	return nil
}

// progressWriter tracks download progress.
type progressWriter struct {
	out        io.Writer
	total      int64
	downloaded *int64
	lastPrint  time.Time
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n := len(p)
	*pw.downloaded += int64(n)

	// Print progress every second
	if time.Since(pw.lastPrint) > time.Second {
		if pw.total > 0 {
			pct := float64(*pw.downloaded) / float64(pw.total) * 100
			fmt.Fprintf(pw.out, "\r    Progress: %s / %s (%.1f%%)  ",
				formatSize(*pw.downloaded), formatSize(pw.total), pct)
		} else {
			fmt.Fprintf(pw.out, "\r    Progress: %s  ", formatSize(*pw.downloaded))
		}
		pw.lastPrint = time.Now()
	}

	return n, nil
}

// formatSize formats bytes as human-readable size.
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// findGENCODEFile looks for a downloaded GENCODE GTF of assembly.
func findGENCODEFile(assembly string) (string, bool) {
	dir, err := dataDir()
	if err != nil {
		return "", false
	}
	pattern := "gencode.v*.basic.annotation.gtf.gz"
	if strings.EqualFold(assembly, "GRCh37") {
		pattern = "gencode.v*lift37.basic.annotation.gtf.gz"
	}
	matches, err := filepath.Glob(filepath.Join(dir, strings.ToLower(assembly), pattern))
	if err != nil || len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1], true
}
