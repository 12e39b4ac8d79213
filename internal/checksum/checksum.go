package checksum

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/winget-publish/internal/execshell"
)

const (
	hashBufferSizeConstant              = 8192
	temporaryFilePatternConstant        = "winget-publish-*.download"
	curlFailFlagConstant                = "--fail"
	curlLocationFlagConstant            = "--location"
	curlSilentFlagConstant              = "--silent"
	curlShowErrorFlagConstant           = "--show-error"
	curlOutputFlagConstant              = "--output"
	downloaderMissingMessageConstant    = "checksum downloader not configured"
	executorMissingMessageConstant      = "curl executor not configured"
	urlRequiredMessageConstant          = "download url must be provided"
	createTemporaryFileTemplateConstant = "unable to create download file: %w"
	downloadFailureTemplateConstant     = "unable to download %s: %w"
	hashFailureTemplateConstant         = "unable to hash download of %s: %w"
	closeTemporaryFileTemplateConstant  = "unable to close download file: %w"
)

// ErrDownloaderNotConfigured indicates the computer was constructed without a downloader.
var ErrDownloaderNotConfigured = errors.New(downloaderMissingMessageConstant)

// ErrCurlExecutorNotConfigured indicates the curl downloader was constructed without an executor.
var ErrCurlExecutorNotConfigured = errors.New(executorMissingMessageConstant)

// ErrURLRequired indicates an empty download address.
var ErrURLRequired = errors.New(urlRequiredMessageConstant)

// Downloader stores the resource at url into destinationPath.
type Downloader interface {
	Download(executionContext context.Context, url string, destinationPath string) error
}

// CurlExecutor is the subset of execshell.ShellExecutor the curl downloader relies on.
type CurlExecutor interface {
	ExecuteCurl(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CurlDownloader downloads with curl, following redirects and failing on HTTP errors.
type CurlDownloader struct {
	executor CurlExecutor
}

// NewCurlDownloader constructs a CurlDownloader.
func NewCurlDownloader(executor CurlExecutor) (*CurlDownloader, error) {
	if executor == nil {
		return nil, ErrCurlExecutorNotConfigured
	}
	return &CurlDownloader{executor: executor}, nil
}

// Download runs curl writing the response body to destinationPath.
func (downloader *CurlDownloader) Download(executionContext context.Context, url string, destinationPath string) error {
	_, executionError := downloader.executor.ExecuteCurl(executionContext, execshell.CommandDetails{
		Arguments: []string{
			curlFailFlagConstant,
			curlLocationFlagConstant,
			curlSilentFlagConstant,
			curlShowErrorFlagConstant,
			curlOutputFlagConstant,
			destinationPath,
			url,
		},
	})
	return executionError
}

// Computer downloads artifacts to a temporary file and digests them with SHA-256.
type Computer struct {
	downloader         Downloader
	temporaryDirectory string
}

// NewComputer constructs a Computer. An empty temporaryDirectory selects the operating system default.
func NewComputer(downloader Downloader, temporaryDirectory string) (*Computer, error) {
	if downloader == nil {
		return nil, ErrDownloaderNotConfigured
	}
	return &Computer{downloader: downloader, temporaryDirectory: temporaryDirectory}, nil
}

// Compute returns the lowercase hexadecimal SHA-256 digest of the resource at url. The temporary download is removed
// on every return path.
func (computer *Computer) Compute(executionContext context.Context, url string) (digest string, computeError error) {
	trimmedURL := strings.TrimSpace(url)
	if len(trimmedURL) == 0 {
		return "", ErrURLRequired
	}

	temporaryFile, createError := os.CreateTemp(computer.temporaryDirectory, temporaryFilePatternConstant)
	if createError != nil {
		return "", fmt.Errorf(createTemporaryFileTemplateConstant, createError)
	}
	temporaryFilePath := temporaryFile.Name()
	defer func() {
		removeError := os.Remove(temporaryFilePath)
		if removeError != nil && !errors.Is(removeError, os.ErrNotExist) && computeError == nil {
			digest = ""
			computeError = removeError
		}
	}()

	if closeError := temporaryFile.Close(); closeError != nil {
		return "", fmt.Errorf(closeTemporaryFileTemplateConstant, closeError)
	}

	if downloadError := computer.downloader.Download(executionContext, trimmedURL, temporaryFilePath); downloadError != nil {
		return "", fmt.Errorf(downloadFailureTemplateConstant, trimmedURL, downloadError)
	}

	fileDigest, hashError := hashFile(temporaryFilePath)
	if hashError != nil {
		return "", fmt.Errorf(hashFailureTemplateConstant, trimmedURL, hashError)
	}
	return fileDigest, nil
}

// DigestReader streams reader through SHA-256 in fixed-size chunks.
func DigestReader(reader io.Reader) (string, error) {
	hasher := sha256.New()
	buffer := make([]byte, hashBufferSizeConstant)
	for {
		bytesRead, readError := reader.Read(buffer)
		if bytesRead > 0 {
			hasher.Write(buffer[:bytesRead])
		}
		if errors.Is(readError, io.EOF) {
			return hex.EncodeToString(hasher.Sum(nil)), nil
		}
		if readError != nil {
			return "", readError
		}
	}
}

func hashFile(filePath string) (string, error) {
	file, openError := os.Open(filePath)
	if openError != nil {
		return "", openError
	}
	defer file.Close()
	return DigestReader(file)
}
