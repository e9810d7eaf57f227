package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/questline/questline/internal/model"
	"github.com/questline/questline/internal/repository"
	"github.com/questline/questline/internal/validation"
)

var (
	ErrNotTargetOwner          = errors.New("target belongs to another user")
	ErrVerificationNotRequired = errors.New("target does not require verification")
	ErrInvalidUpload           = errors.New("invalid upload")
)

// VisionVerifier classifies an image against a prompt. Satisfied by
// *ai.Client.
type VisionVerifier interface {
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

type VerificationService struct {
	targetRepository  repository.TargetRepository
	journeyRepository repository.JourneyRepository
	fileService       *FileService
	gamification      *GamificationService
	vision            VisionVerifier
}

func NewVerificationService(
	targetRepository repository.TargetRepository,
	journeyRepository repository.JourneyRepository,
	fileService *FileService,
	gamification *GamificationService,
	vision VisionVerifier,
) *VerificationService {
	return &VerificationService{
		targetRepository:  targetRepository,
		journeyRepository: journeyRepository,
		fileService:       fileService,
		gamification:      gamification,
		vision:            vision,
	}
}

// VerificationResult reports the outcome of one photo verification attempt.
type VerificationResult struct {
	Verified bool
	Target   *model.Target
}

// Verify stores the uploaded photo, asks the vision model whether it shows
// the target's task done, and applies the outcome: verified targets complete
// themselves and their linked daily task and pay the verification bonus;
// rejected ones only record the rejection. Transport or parse failures leave
// the target untouched.
func (s *VerificationService) Verify(ctx context.Context, userID, targetID string, file multipart.File, header *multipart.FileHeader) (*VerificationResult, error) {
	target, err := s.targetRepository.ByID(targetID)
	if err != nil {
		return nil, err
	}
	if !target.OwnedBy(userID) {
		return nil, ErrNotTargetOwner
	}
	if !target.VerificationRequired {
		return nil, ErrVerificationNotRequired
	}

	err = validation.ValidateFile(header, validation.EvidenceConstraints)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidUpload, err)
	}

	image, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	_, err = s.fileService.Upload(userID, "target", target.ID, model.FileTypeEvidence, bytes.NewReader(image), header)
	if err != nil {
		return nil, err
	}

	answer, err := s.vision.GenerateVision(ctx, verificationPrompt(target.Title), image, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("vision verification failed: %w", err)
	}

	if !strings.Contains(strings.ToLower(answer), "yes") {
		target.VerificationStatus = model.VerificationRejected
		err = s.targetRepository.Update(target)
		if err != nil {
			return nil, err
		}
		return &VerificationResult{Verified: false, Target: target}, nil
	}

	target.VerificationStatus = model.VerificationVerified
	target.Completed = true
	err = s.targetRepository.Update(target)
	if err != nil {
		return nil, err
	}

	task, err := s.journeyRepository.TaskByTarget(target.ID)
	if err == nil {
		err = s.journeyRepository.CompleteTask(task.ID)
		if err != nil {
			return nil, err
		}
	} else if !errors.Is(err, repository.ErrTaskNotFound) {
		return nil, err
	}

	err = s.gamification.Award(userID, VerificationBonus)
	if err != nil {
		return nil, err
	}

	return &VerificationResult{Verified: true, Target: target}, nil
}

// Target loads a verification target, restricted to its owner.
func (s *VerificationService) Target(userID, targetID string) (*model.Target, error) {
	target, err := s.targetRepository.ByID(targetID)
	if err != nil {
		return nil, err
	}
	if !target.OwnedBy(userID) {
		return nil, ErrNotTargetOwner
	}
	return target, nil
}

// EvidenceFile is a stored evidence photo with its access URL.
type EvidenceFile struct {
	File *model.File
	URL  string
}

// Evidence lists the photos uploaded for a target, newest first.
func (s *VerificationService) Evidence(targetID string) ([]*EvidenceFile, error) {
	files, err := s.fileService.Files("target", targetID)
	if err != nil {
		return nil, err
	}

	evidence := make([]*EvidenceFile, 0, len(files))
	for _, file := range files {
		evidence = append(evidence, &EvidenceFile{File: file, URL: s.fileService.URL(file)})
	}
	return evidence, nil
}

func verificationPrompt(title string) string {
	return fmt.Sprintf(`You are an inspector. Your goal is to verify if a user has completed the task: '%[1]s'.
Analyze the provided image based on the following criteria:
1. Is it related to the task '%[1]s'?
2. Is the task completed as mentioned in '%[1]s'?
3. Is the uploaded image AI generated or really done by the user? Respond 'No' if it is AI generated.
After analyzing the image against these criteria, respond with only the word 'Yes' if the task is done, or only the word 'No' if it is not.`, title)
}
