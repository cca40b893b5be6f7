package registry

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"
	"github.com/jfrog/packagecloud-publisher-go/entities"
)

var distributionKinds = []string{"deb", "rpm", "dsc"}

// parseContents reads the body of a contents.json response: {"files": [{"filename": ..., "size": ..., "md5sum": ...}]}.
func parseContents(body []byte) ([]entities.PackageFile, error) {
	files := []entities.PackageFile{}
	var parseErr error
	_, err := jsonparser.ArrayEach(body, func(value []byte, _ jsonparser.ValueType, _ int, err error) {
		if parseErr != nil {
			return
		}
		if err != nil {
			parseErr = err
			return
		}
		filename, err := jsonparser.GetString(value, "filename")
		if err != nil {
			parseErr = fmt.Errorf("package file without a filename: %s", value)
			return
		}
		file := entities.PackageFile{Filename: filename}
		if size, err := jsonparser.GetInt(value, "size"); err == nil {
			file.Size = size
		}
		if md5, err := jsonparser.GetString(value, "md5sum"); err == nil {
			file.Md5 = md5
		}
		files = append(files, file)
	}, "files")
	if err != nil {
		return nil, fmt.Errorf("failed parsing package contents: %w", err)
	}
	if parseErr != nil {
		return nil, fmt.Errorf("failed parsing package contents: %w", parseErr)
	}
	return files, nil
}

// parseDistributions reads the body of a distributions.json response. Missing package kinds are left empty.
func parseDistributions(body []byte) (*entities.Distributions, error) {
	distributions := &entities.Distributions{}
	for _, kind := range distributionKinds {
		parsed, err := parseDistributionList(body, kind)
		if err != nil {
			return nil, fmt.Errorf("failed parsing %s distributions: %w", kind, err)
		}
		switch kind {
		case "deb":
			distributions.Deb = parsed
		case "rpm":
			distributions.Rpm = parsed
		case "dsc":
			distributions.Dsc = parsed
		}
	}
	return distributions, nil
}

func parseDistributionList(body []byte, kind string) ([]entities.Distribution, error) {
	var distributions []entities.Distribution
	var parseErr error
	_, err := jsonparser.ArrayEach(body, func(value []byte, _ jsonparser.ValueType, _ int, err error) {
		if parseErr != nil {
			return
		}
		if err != nil {
			parseErr = err
			return
		}
		distribution, err := parseDistribution(value)
		if err != nil {
			parseErr = err
			return
		}
		distributions = append(distributions, distribution)
	}, kind)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return distributions, parseErr
}

func parseDistribution(value []byte) (entities.Distribution, error) {
	distribution := entities.Distribution{}
	var err error
	if distribution.DisplayName, err = jsonparser.GetString(value, "display_name"); err != nil {
		return distribution, fmt.Errorf("distribution without a display name: %w", err)
	}
	distribution.IndexName, _ = jsonparser.GetString(value, "index_name")

	var versionErr error
	_, err = jsonparser.ArrayEach(value, func(version []byte, _ jsonparser.ValueType, _ int, err error) {
		if versionErr != nil {
			return
		}
		if err != nil {
			versionErr = err
			return
		}
		id, err := jsonparser.GetInt(version, "id")
		if err != nil {
			versionErr = fmt.Errorf("%s version without an id: %w", distribution.DisplayName, err)
			return
		}
		displayName, _ := jsonparser.GetString(version, "display_name")
		indexName, _ := jsonparser.GetString(version, "index_name")
		distribution.Versions = append(distribution.Versions, entities.DistroVersion{Id: int(id), DisplayName: displayName, IndexName: indexName})
	}, "versions")
	if err != nil && !errors.Is(err, jsonparser.KeyPathNotFoundError) {
		return distribution, err
	}
	return distribution, versionErr
}
