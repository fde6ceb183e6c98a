package encoder

import (
	"io"

	"github.com/destel/rill"

	"m4o.io/osmcat/internal/pb"
)

// GeneratePacker binds a compression to a rill mapping function.
func GeneratePacker(c BlobCompression) func(body []byte) ([]byte, error) {
	return func(body []byte) ([]byte, error) {
		return Pack(body, c)
	}
}

// SavePacked writes packed blobs to w, in channel order, framing each as an
// OSMData blob.  One status is emitted per blob.
func SavePacked(w io.Writer, ch <-chan rill.Try[[]byte]) <-chan rill.Try[struct{}] {
	out := make(chan rill.Try[struct{}])

	go func() {
		defer close(out)

		for packed := range ch {
			if packed.Error != nil {
				out <- rill.Try[struct{}]{Error: packed.Error}

				continue
			}

			out <- rill.Wrap(struct{}{}, WriteBlob(w, pb.TypeOSMData, packed.Value))
		}
	}()

	return out
}
