// Package checkpointer implements functionality to periodically save
// serializable objects, such as policies, during an experiment
package checkpointer

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Checkpointer checkpoints/saves serializable objects after the
// examples of an experiment. The argument to Checkpoint is the number
// of examples trained on so far.
type Checkpointer interface {
	Checkpoint(examples int) error
}

// Save gob-encodes object into filename
func Save(filename string, object Serializable) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create file: %v", err)
	}
	defer file.Close()

	enc := gob.NewEncoder(file)
	if err := enc.Encode(object); err != nil {
		return fmt.Errorf("save: could not encode object: %v", err)
	}
	return nil
}

// Load decodes the gob-encoded object in filename into object
func Load(filename string, object Serializable) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load: could not open file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	if err := dec.Decode(object); err != nil {
		return fmt.Errorf("load: could not decode object: %v", err)
	}
	return nil
}
