package moderationsvc

import (
	"context"
	"database/sql"
	"errors"
	"io"

	"quickrent/model"
)

type ErrCode string

const (
	ErrNotFound     ErrCode = "NOT_FOUND"
	ErrForbidden    ErrCode = "FORBIDDEN"
	ErrInvalidInput ErrCode = "INVALID_INPUT"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Repo interface {
	InsertReport(ctx context.Context, rep *model.Report) error
	ListOpenReports(ctx context.Context) ([]model.Report, error)
	ResolveReport(ctx context.Context, id int64, status model.ReportStatus, note *string) (bool, error)

	InsertVerification(ctx context.Context, v *model.Verification) error
	ListPendingVerifications(ctx context.Context) ([]model.Verification, error)
	ReviewVerification(ctx context.Context, id int64, status model.VerificationStatus, note *string) (bool, error)

	InsertActivity(ctx context.Context, actorID int64, action, refTable string, refID int64) error
	ListActivity(ctx context.Context, limit int) ([]model.Activity, error)
}

type RentalRepo interface {
	Get(ctx context.Context, id int64) (*model.Rental, error)
}

type FileStore interface {
	Save(rentalID int64, filename string, r io.Reader) (string, error)
}

type Service interface {
	FileReport(ctx context.Context, reporterID int64, target model.ReportTarget, targetID int64, reason string) (*model.Report, error)
	ListOpenReports(ctx context.Context) ([]model.Report, error)
	ResolveReport(ctx context.Context, adminID, reportID int64, status model.ReportStatus, note string) error

	// SubmitVerification stores the renter's identity document for a rental.
	SubmitVerification(ctx context.Context, callerID, rentalID int64, filename string, file io.Reader) (*model.Verification, error)
	ListPendingVerifications(ctx context.Context) ([]model.Verification, error)
	ReviewVerification(ctx context.Context, adminID, verificationID int64, status model.VerificationStatus, note string) error

	ListActivity(ctx context.Context, limit int) ([]model.Activity, error)
}

type service struct {
	r       Repo
	rentals RentalRepo
	files   FileStore
}

func New(r Repo, rentals RentalRepo, files FileStore) Service {
	return &service{r: r, rentals: rentals, files: files}
}

func (s *service) FileReport(ctx context.Context, reporterID int64, target model.ReportTarget, targetID int64, reason string) (*model.Report, error) {
	if target != model.ReportUser && target != model.ReportItem {
		return nil, makeErr(ErrInvalidInput)
	}
	if targetID <= 0 || reason == "" {
		return nil, makeErr(ErrInvalidInput)
	}
	rep := &model.Report{
		ReporterID: reporterID,
		Target:     target,
		TargetID:   targetID,
		Reason:     reason,
		Status:     model.ReportOpen,
	}
	if err := s.r.InsertReport(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *service) ListOpenReports(ctx context.Context) ([]model.Report, error) {
	return s.r.ListOpenReports(ctx)
}

func (s *service) ResolveReport(ctx context.Context, adminID, reportID int64, status model.ReportStatus, note string) error {
	if status != model.ReportResolved && status != model.ReportDismissed {
		return makeErr(ErrInvalidInput)
	}
	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	ok, err := s.r.ResolveReport(ctx, reportID, status, notePtr)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	_ = s.r.InsertActivity(ctx, adminID, "report."+string(status), "reports", reportID)
	return nil
}

func (s *service) SubmitVerification(ctx context.Context, callerID, rentalID int64, filename string, file io.Reader) (*model.Verification, error) {
	rn, err := s.rentals.Get(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	// only the renter proves their identity
	if rn.RenterID != callerID {
		return nil, makeErr(ErrForbidden)
	}
	if filename == "" {
		return nil, makeErr(ErrInvalidInput)
	}

	path, err := s.files.Save(rentalID, filename, file)
	if err != nil {
		return nil, err
	}

	v := &model.Verification{
		RentalID: rentalID,
		UserID:   callerID,
		FilePath: path,
		FileName: filename,
		Status:   model.VerificationPending,
	}
	if err := s.r.InsertVerification(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *service) ListPendingVerifications(ctx context.Context) ([]model.Verification, error) {
	return s.r.ListPendingVerifications(ctx)
}

func (s *service) ReviewVerification(ctx context.Context, adminID, verificationID int64, status model.VerificationStatus, note string) error {
	if status != model.VerificationApproved && status != model.VerificationRejected {
		return makeErr(ErrInvalidInput)
	}
	var notePtr *string
	if note != "" {
		notePtr = &note
	}
	ok, err := s.r.ReviewVerification(ctx, verificationID, status, notePtr)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	_ = s.r.InsertActivity(ctx, adminID, "verification."+string(status), "verifications", verificationID)
	return nil
}

func (s *service) ListActivity(ctx context.Context, limit int) ([]model.Activity, error) {
	return s.r.ListActivity(ctx, limit)
}
