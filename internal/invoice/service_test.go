package invoice

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/invoice-extractor/internal/extraction"
)

var _ = Describe("Service", func() {
	var (
		staging   *mockStaging
		processor *mockProcessor
		history   *mockHistory
		clock     *steppingClock
		service   *Service
	)

	BeforeEach(func() {
		staging = newMockStaging()
		processor = &mockProcessor{result: extraction.Result{
			Kind:     extraction.KindSuccess,
			Text:     `{"vendor": "Acme", "total": "12.50"}`,
			MIMEType: "image/png",
		}}
		history = newMockHistory()
		clock = &steppingClock{now: time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC), step: 250 * time.Millisecond}
		service = NewServiceWithDeps(staging, processor, history, &sequentialIDs{}, clock)
	})

	Describe("Extract", func() {
		var (
			filename string
			outcome  *Outcome
			err      error
		)

		BeforeEach(func() {
			filename = "my receipt.png"
		})

		JustBeforeEach(func() {
			outcome, err = service.Extract(context.Background(), filename, strings.NewReader("image bytes"))
		})

		When("extraction succeeds", func() {
			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should return the result", func() {
				Expect(outcome.ID).To(Equal("id-1"))
				Expect(outcome.Filename).To(Equal("my_receipt.png"))
				Expect(outcome.Result.Text).To(Equal(`{"vendor": "Acme", "total": "12.50"}`))
			})

			It("should process the staged path", func() {
				Expect(processor.paths).To(ConsistOf("/staging/my_receipt.png"))
			})

			It("should delete the staged file", func() {
				Expect(staging.deleted).To(ConsistOf("/staging/my_receipt.png"))
				Expect(staging.files).To(BeEmpty())
			})

			It("should record the extraction", func() {
				record := history.records["id-1"]
				Expect(record).NotTo(BeNil())
				Expect(record.Filename).To(Equal("my receipt.png"))
				Expect(record.StoredAs).To(Equal("my_receipt.png"))
				Expect(record.MIMEType).To(Equal("image/png"))
				Expect(record.Size).To(Equal(int64(len("image bytes"))))
				Expect(record.Outcome).To(Equal(extraction.KindSuccess))
				Expect(record.JSONValid).To(BeTrue())
				Expect(record.Error).To(BeEmpty())
				Expect(record.DurationMS).To(Equal(int64(250)))
				Expect(record.CreatedAt).To(Equal(time.Date(2024, 3, 20, 10, 0, 0, 0, time.UTC)))
			})
		})

		When("the model answers with prose", func() {
			BeforeEach(func() {
				processor.result = extraction.Result{Kind: extraction.KindSuccess, Text: extraction.NoResponseText}
			})

			It("should mark the record as not JSON", func() {
				Expect(history.records["id-1"].JSONValid).To(BeFalse())
			})
		})

		When("extraction fails", func() {
			BeforeEach(func() {
				processor.result = extraction.Result{
					Kind: extraction.KindUnsupportedFormat,
					Err:  &extraction.UnsupportedFormatError{Extension: ".txt"},
				}
				filename = "notes.txt"
			})

			It("should not return an error", func() {
				Expect(err).NotTo(HaveOccurred())
			})

			It("should carry the failure in the result", func() {
				Expect(outcome.Result.Kind).To(Equal(extraction.KindUnsupportedFormat))
				Expect(outcome.Result.Message()).To(ContainSubstring(".txt"))
			})

			It("should delete the staged file", func() {
				Expect(staging.deleted).To(ConsistOf("/staging/notes.txt"))
			})

			It("should record the error", func() {
				record := history.records["id-1"]
				Expect(record.Outcome).To(Equal(extraction.KindUnsupportedFormat))
				Expect(record.Error).To(ContainSubstring(".txt"))
				Expect(record.JSONValid).To(BeFalse())
			})
		})

		When("the filename is unsafe", func() {
			BeforeEach(func() {
				filename = "../../"
			})

			It("returns ErrInvalidFilename", func() {
				Expect(err).To(MatchError(ErrInvalidFilename))
			})

			It("should not stage anything", func() {
				Expect(staging.files).To(BeEmpty())
				Expect(processor.paths).To(BeEmpty())
			})
		})

		When("staging fails", func() {
			BeforeEach(func() {
				staging.saveErr = errors.New("disk full")
			})

			It("returns the error", func() {
				Expect(err).To(MatchError(ContainSubstring("staging upload: disk full")))
			})

			It("should not call the processor", func() {
				Expect(processor.paths).To(BeEmpty())
			})
		})

		When("deleting the staged file fails", func() {
			BeforeEach(func() {
				staging.deleteErr = errBoom
			})

			It("should still return the result", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Result.OK()).To(BeTrue())
			})
		})

		When("saving the record fails", func() {
			BeforeEach(func() {
				history.saveErr = errBoom
			})

			It("should still return the result", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Result.OK()).To(BeTrue())
			})
		})

		When("history is disabled", func() {
			BeforeEach(func() {
				service = NewServiceWithDeps(staging, processor, nil, &sequentialIDs{}, clock)
			})

			It("should extract without recording", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Result.OK()).To(BeTrue())
			})
		})
	})

	Describe("Extract with real staging", func() {
		var (
			baseDir string
			local   *LocalStaging
		)

		BeforeEach(func() {
			baseDir = filepath.Join(GinkgoT().TempDir(), "uploads")
			var err error
			local, err = NewLocalStaging(baseDir)
			Expect(err).NotTo(HaveOccurred())
		})

		When("the file disappears between save and processing", func() {
			It("should report the missing path", func() {
				adapter := extraction.NewAdapter(&fakeGenerator{text: "{}"}, time.Second)
				processor.fn = func(ctx context.Context, path string) extraction.Result {
					Expect(os.Remove(path)).To(Succeed())
					return adapter.Process(ctx, path)
				}
				service = NewService(local, processor, nil)

				outcome, err := service.Extract(context.Background(), "receipt.png", strings.NewReader("data"))
				Expect(err).NotTo(HaveOccurred())
				Expect(outcome.Result.Kind).To(Equal(extraction.KindNotFound))
				Expect(outcome.Result.Message()).To(HavePrefix("could not find file: "))
				Expect(outcome.Result.Message()).To(ContainSubstring(processor.paths[0]))
				Expect(dirEntries(baseDir)).To(BeEmpty())
			})
		})

		When("the processor panics", func() {
			It("should still remove the staged file", func() {
				processor.fn = func(ctx context.Context, path string) extraction.Result {
					panic("processor exploded")
				}
				service = NewService(local, processor, nil)

				Expect(func() {
					service.Extract(context.Background(), "receipt.png", strings.NewReader("data"))
				}).To(PanicWith("processor exploded"))
				Expect(dirEntries(baseDir)).To(BeEmpty())
			})
		})
	})

	Describe("GetRecord", func() {
		When("the record exists", func() {
			BeforeEach(func() {
				history.records["id-9"] = &Record{ID: "id-9"}
			})

			It("should return it", func() {
				record, err := service.GetRecord("id-9")
				Expect(err).NotTo(HaveOccurred())
				Expect(record.ID).To(Equal("id-9"))
			})
		})

		When("the record does not exist", func() {
			It("returns ErrRecordNotFound", func() {
				_, err := service.GetRecord("missing")
				Expect(err).To(MatchError(ErrRecordNotFound))
			})
		})

		When("history is disabled", func() {
			It("returns ErrHistoryDisabled", func() {
				service = NewService(staging, processor, nil)
				_, err := service.GetRecord("id-9")
				Expect(err).To(MatchError(ErrHistoryDisabled))
			})
		})
	})

	Describe("ListRecords", func() {
		When("the history fails", func() {
			BeforeEach(func() {
				history.listErr = errBoom
			})

			It("returns the error", func() {
				_, err := service.ListRecords()
				Expect(err).To(MatchError(errBoom))
			})
		})

		When("history is disabled", func() {
			It("returns ErrHistoryDisabled", func() {
				service = NewService(staging, processor, nil)
				_, err := service.ListRecords()
				Expect(err).To(MatchError(ErrHistoryDisabled))
			})
		})
	})
})
