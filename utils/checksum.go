package utils

import (
	"bufio"

	//#nosec G501 -- md5 is accepted by packagecloud.
	"crypto/md5"
	//#nosec G505 -- sha1 is accepted by packagecloud.
	"crypto/sha1"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/jfrog/packagecloud-publisher-go/entities"
	"github.com/minio/sha256-simd"
)

type Algorithm int

const (
	MD5 Algorithm = iota
	SHA1
	SHA256
)

var algorithmFunc = map[Algorithm]func() hash.Hash{
	// Go native crypto algorithms:
	MD5:  md5.New,
	SHA1: sha1.New,
	// sha256-simd algorithm:
	SHA256: sha256.New,
}

// CalcChecksums calculates all hashes at once using AsyncMultiWriter. The reader is therefore read only once.
func CalcChecksums(reader io.Reader, checksumType ...Algorithm) (map[Algorithm]string, error) {
	hashes, _, err := calcChecksums(reader, checksumType...)
	if err != nil {
		return nil, err
	}
	return sumResults(hashes), nil
}

// CalcChecksumDetails reads the reader to its end and returns its MD5, SHA1 and SHA256 checksums with the number of bytes read.
func CalcChecksumDetails(reader io.Reader) (checksum entities.Checksum, size int64, err error) {
	hashes, size, err := calcChecksums(reader)
	if err != nil {
		return
	}
	results := sumResults(hashes)
	checksum = entities.Checksum{Md5: results[MD5], Sha1: results[SHA1], Sha256: results[SHA256]}
	return
}

func calcChecksums(reader io.Reader, checksumType ...Algorithm) (map[Algorithm]hash.Hash, int64, error) {
	hashes := getChecksumByAlgorithm(checksumType...)
	pageSize := os.Getpagesize()
	sizedReader := bufio.NewReaderSize(reader, pageSize)
	var hashWriter []io.Writer
	for _, v := range hashes {
		hashWriter = append(hashWriter, v)
	}
	written, err := io.Copy(AsyncMultiWriter(hashWriter...), sizedReader)
	if err != nil {
		return nil, 0, err
	}
	return hashes, written, nil
}

func sumResults(hashes map[Algorithm]hash.Hash) map[Algorithm]string {
	results := map[Algorithm]string{}
	for k, v := range hashes {
		results[k] = fmt.Sprintf("%x", v.Sum(nil))
	}
	return results
}

func getChecksumByAlgorithm(checksumType ...Algorithm) map[Algorithm]hash.Hash {
	hashes := map[Algorithm]hash.Hash{}
	if len(checksumType) == 0 {
		for k, v := range algorithmFunc {
			hashes[k] = v()
		}
		return hashes
	}

	for _, v := range checksumType {
		hashes[v] = algorithmFunc[v]()
	}
	return hashes
}
