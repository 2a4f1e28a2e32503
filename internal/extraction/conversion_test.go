package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("imagePayload", func() {
	It("should pass images through unchanged", func() {
		in := Payload{MIMEType: "image/jpeg", Data: []byte{0xFF, 0xD8}}
		out, err := imagePayload(in)
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(in))
	})

	It("should fail on an unreadable PDF", func() {
		_, err := imagePayload(Payload{MIMEType: "application/pdf", Data: []byte("garbage")})
		Expect(err).To(MatchError(ContainSubstring("opening PDF")))
	})
})
