package publish

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Classify accepts displayName if it ends with one of the supported extensions.
// The match is a case-sensitive suffix match.
func Classify(displayName string, supportedExtensions []string) Classification {
	supported := slices.ContainsFunc(supportedExtensions, func(extension string) bool {
		return strings.HasSuffix(displayName, extension)
	})
	if supported {
		return Accepted
	}
	return Rejected
}

// ClassificationResult is the output of the classification pass.
type ClassificationResult struct {
	// All files, in input order.
	Files    []ClassifiedFile
	Rejected RejectedFileIndex
}

// Accepted returns the accepted files in input order.
func (c ClassificationResult) Accepted() []CandidateFile {
	var accepted []CandidateFile
	for _, file := range c.Files {
		if file.Classification == Accepted {
			accepted = append(accepted, file.CandidateFile)
		}
	}
	return accepted
}

func ClassifyAll(files []CandidateFile, supportedExtensions []string) ClassificationResult {
	result := ClassificationResult{Files: make([]ClassifiedFile, 0, len(files))}
	var rejected []CandidateFile
	for _, file := range files {
		classification := Classify(file.DisplayName, supportedExtensions)
		result.Files = append(result.Files, ClassifiedFile{CandidateFile: file, Classification: classification})
		if classification == Rejected {
			rejected = append(rejected, file)
		}
	}
	result.Rejected = NewRejectedFileIndex(rejected...)
	return result
}
