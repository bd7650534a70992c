package pass_test

import (
	"math/rand"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/pass"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Query", func() {
	passes := func(statuses ...pass.Status) []*pass.Pass {
		out := make([]*pass.Pass, len(statuses))
		for i, s := range statuses {
			out[i] = &pass.Pass{ID: int64(i + 1), Status: s}
		}
		return out
	}

	ids := func(ps []*pass.Pass) []int64 {
		out := make([]int64, len(ps))
		for i, p := range ps {
			out[i] = p.ID
		}
		return out
	}

	Describe("FilterByStatus", func() {
		input := passes(pass.StatusPending, pass.StatusApproved, pass.StatusPending, pass.StatusRejected)

		It("should return the input unchanged for ALL", func() {
			Expect(pass.FilterByStatus(input, pass.FilterAll)).To(Equal(input))
		})

		It("should keep matching passes in input order", func() {
			Expect(ids(pass.FilterByStatus(input, pass.StatusFilter(pass.StatusPending)))).To(Equal([]int64{1, 3}))
			Expect(ids(pass.FilterByStatus(input, pass.StatusFilter(pass.StatusRejected)))).To(Equal([]int64{4}))
		})

		It("should handle an empty input", func() {
			Expect(pass.FilterByStatus(nil, pass.StatusFilter(pass.StatusApproved))).To(BeEmpty())
		})
	})

	Describe("ParseStatusFilter", func() {
		DescribeTable("accepted values",
			func(raw string, expected pass.StatusFilter) {
				filter, appErr := pass.ParseStatusFilter(raw)
				Expect(appErr).To(BeNil())
				Expect(filter).To(Equal(expected))
			},
			Entry("empty", "", pass.FilterAll),
			Entry("all", "all", pass.FilterAll),
			Entry("pending", "PENDING", pass.StatusFilter(pass.StatusPending)),
			Entry("lower case", "approved", pass.StatusFilter(pass.StatusApproved)),
		)

		It("should reject unknown statuses", func() {
			_, appErr := pass.ParseStatusFilter("CANCELLED")
			Expect(appErr).NotTo(BeNil())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Summarize", func() {
		It("should count each status", func() {
			s := pass.Summarize(passes(pass.StatusPending, pass.StatusApproved, pass.StatusPending, pass.StatusRejected))
			Expect(s).To(Equal(pass.Summary{Total: 4, Pending: 2, Approved: 1, Rejected: 1}))
		})

		It("should keep total equal to the sum for arbitrary inputs", func() {
			all := []pass.Status{pass.StatusPending, pass.StatusApproved, pass.StatusRejected}
			rng := rand.New(rand.NewSource(GinkgoRandomSeed()))
			for n := 0; n < 50; n++ {
				statuses := make([]pass.Status, rng.Intn(40))
				for i := range statuses {
					statuses[i] = all[rng.Intn(len(all))]
				}
				s := pass.Summarize(passes(statuses...))
				Expect(s.Total).To(Equal(s.Pending + s.Approved + s.Rejected))
				Expect(s.Total).To(Equal(len(statuses)))
			}
		})
	})
})
