package main

import (
	"encoding/json"
	"io/ioutil"
	"os"

	"github.com/pkg/errors"
)

// note -> message type -> velocities
type velocityMap map[uint8]map[uint8][]int

func importDatabase(name string) (velocityMap, error) {
	jsonFile, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer jsonFile.Close()

	var bytes []byte
	bytes, err = ioutil.ReadAll(jsonFile)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}

	var data velocityMap
	if err = json.Unmarshal(bytes, &data); err != nil {
		return nil, errors.Wrapf(err, "parse %s", name)
	}
	return data, nil
}
