package storage

import (
	"fmt"

	humanize "github.com/dustin/go-humanize"
	"github.com/janelia-flyem/ndimg/ndimg"
	"github.com/twinj/uuid"
)

// storageType returns the primitive actually held in memory for a data type.
func storageType(t ndimg.DataType) ndimg.DataType {
	if t.IsPacked() {
		return ndimg.T_uint64
	}
	return t
}

// create instantiates the container for factory f with the primitive of t.
func create(f Factory, t ndimg.DataType, dims []int, epp int) (Container, error) {
	switch storageType(t) {
	case ndimg.T_uint8:
		return createOf[uint8](f, t, dims, epp)
	case ndimg.T_int8:
		return createOf[int8](f, t, dims, epp)
	case ndimg.T_uint16:
		return createOf[uint16](f, t, dims, epp)
	case ndimg.T_int16:
		return createOf[int16](f, t, dims, epp)
	case ndimg.T_uint32:
		return createOf[uint32](f, t, dims, epp)
	case ndimg.T_int32:
		return createOf[int32](f, t, dims, epp)
	case ndimg.T_uint64:
		return createOf[uint64](f, t, dims, epp)
	case ndimg.T_int64:
		return createOf[int64](f, t, dims, epp)
	case ndimg.T_float32:
		return createOf[float32](f, t, dims, epp)
	case ndimg.T_float64:
		return createOf[float64](f, t, dims, epp)
	}
	return nil, fmt.Errorf("%s containers can't hold %s: %w", f.Name(), t, ndimg.ErrUnsupportedLayout)
}

func createOf[E Element](f Factory, t ndimg.DataType, dims []int, epp int) (Container, error) {
	var c Container
	var err error
	switch f := f.(type) {
	case *ArrayFactory:
		c, err = newArray[E](f, t, dims, epp)
	case *CellFactory:
		c, err = newCell[E](f, t, dims, epp)
	case *PlanarFactory:
		c, err = newPlanar[E](f, t, dims, epp, nil)
	case *MappedFactory:
		c, err = newMapped[E](f, t, dims, epp)
	default:
		return nil, fmt.Errorf("unknown container factory %T", f)
	}
	if err != nil {
		return nil, err
	}
	ndimg.Debugf("created %s (%s)\n", c, humanize.Bytes(uint64(c.NumPixels())*uint64(epp)*uint64(t.Bits())/8))
	return c, nil
}

func newID() []byte {
	return uuid.NewV4().Bytes()
}
