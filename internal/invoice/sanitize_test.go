package invoice

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SanitizeFilename", func() {
	DescribeTable("safe names",
		func(input string, expected string) {
			got, err := SanitizeFilename(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(expected))
		},
		Entry("plain name", "receipt.png", "receipt.png"),
		Entry("spaces", "my receipt 2024.jpg", "my_receipt_2024.jpg"),
		Entry("unix traversal", "../../etc/passwd.pdf", "passwd.pdf"),
		Entry("windows traversal", `..\..\Windows\win.ini.png`, "win.ini.png"),
		Entry("absolute path", "/var/www/invoice.pdf", "invoice.pdf"),
		Entry("accents folded", "reçu café.jpeg", "recu_cafe.jpeg"),
		Entry("special characters dropped", "inv<>:|?*oice.pdf", "invoice.pdf"),
		Entry("leading dots", "..hidden.png", "hidden.png"),
		Entry("upper case kept", "SCAN.PDF", "SCAN.PDF"),
		Entry("unsupported extension kept", "notes.txt", "notes.txt"),
	)

	DescribeTable("unsafe names",
		func(input string) {
			_, err := SanitizeFilename(input)
			Expect(err).To(MatchError(ErrInvalidFilename))
		},
		Entry("empty", ""),
		Entry("dot dot", ".."),
		Entry("only separators", "../../"),
		Entry("only symbols", "***"),
		Entry("non latin script", "領収書"),
	)

	It("should truncate long names and keep the extension", func() {
		got, err := SanitizeFilename(strings.Repeat("a", 300) + ".png")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(strings.Repeat("a", 100) + ".png"))
	})

	It("should never return a path separator", func() {
		for _, input := range []string{"a/b/c.png", `a\b\c.png`, "a/../c.png"} {
			got, err := SanitizeFilename(input)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(ContainSubstring("/"))
			Expect(got).NotTo(ContainSubstring(`\`))
		}
	})
})
