package auth

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
)

var _ = ginkgo.Describe("RoleChecker", func() {
	var (
		checker  *RoleChecker
		employee *User
		admin    *User
	)

	ginkgo.BeforeEach(func() {
		checker = NewPermissionChecker()
		employee = &User{ID: 1, Role: RoleEmployee}
		admin = &User{ID: 2, Role: RoleAdmin}
	})

	ginkgo.DescribeTable("Allowed",
		func(op Operation, employeeAllowed, adminAllowed bool) {
			gomega.Expect(checker.Allowed(employee.Role, op)).To(gomega.Equal(employeeAllowed))
			gomega.Expect(checker.Allowed(admin.Role, op)).To(gomega.Equal(adminAllowed))
		},
		ginkgo.Entry("create pass", OpCreatePass, true, true),
		ginkgo.Entry("list own passes", OpListOwnPass, true, true),
		ginkgo.Entry("view pass", OpViewPass, true, true),
		ginkgo.Entry("view profile", OpViewProfile, true, true),
		ginkgo.Entry("list all passes", OpListAllPass, false, true),
		ginkgo.Entry("approve pass", OpApprovePass, false, true),
		ginkgo.Entry("reject pass", OpRejectPass, false, true),
		ginkgo.Entry("pass summary", OpPassSummary, false, true),
	)

	ginkgo.It("denies unknown operations and unknown roles", func() {
		gomega.Expect(checker.Allowed(RoleAdmin, Operation("pass:delete"))).To(gomega.BeFalse())
		gomega.Expect(checker.Allowed(Role("GUEST"), OpCreatePass)).To(gomega.BeFalse())
	})

	ginkgo.It("answers the context-aware form used by the RBAC middleware", func() {
		allowed, err := checker.AllowedCtx(context.Background(), RoleAdmin, OpApprovePass)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(allowed).To(gomega.BeTrue())
	})

	ginkgo.Describe("OwnershipPolicy", func() {
		ginkgo.It("lets owners and administrators view a pass", func() {
			policy := OwnershipPolicy{}
			gomega.Expect(policy.CanView(employee, 1)).To(gomega.BeTrue())
			gomega.Expect(policy.CanView(employee, 3)).To(gomega.BeFalse())
			gomega.Expect(policy.CanView(admin, 3)).To(gomega.BeTrue())
			gomega.Expect(policy.CanView(nil, 1)).To(gomega.BeFalse())
		})
	})
})
