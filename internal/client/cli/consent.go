package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/studybridge/internal/client/models"
)

func parseScope(s string) (models.SharingScope, error) {
	switch models.SharingScope(s) {
	case models.SharingNone, models.SharingSponsors, models.SharingAll:
		return models.SharingScope(s), nil
	}
	return "", fmt.Errorf("unknown sharing scope %q", s)
}

// SignConsent collects the consent signature interactively and stores it
// locally. If a session is active the signature is uploaded right away;
// otherwise it stays pending until the next sign-in.
func (a *App) SignConsent(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter your full name", os.Stdout)
	if err != nil {
		return err
	}

	birthDate, err := getSimpleText(a.reader, "Enter your birth date (YYYY-MM-DD)", os.Stdout)
	if err != nil {
		return err
	}

	scopeText, err := getSimpleText(a.reader, "Enter sharing scope (no_sharing, sponsors_and_partners, all_qualified_researchers)", os.Stdout)
	if err != nil {
		return err
	}
	scope, err := parseScope(scopeText)
	if err != nil {
		return err
	}

	imagePath, err := getSimpleText(a.reader, "Enter path to signature image (empty to skip)", os.Stdout)
	if err != nil {
		return err
	}
	var image []byte
	if imagePath != "" {
		image, err = os.ReadFile(imagePath)
		if err != nil {
			return fmt.Errorf("reading signature image: %w", err)
		}
	}

	if err := a.session.SaveConsentLocally(ctx, name, birthDate, image, "", scope); err != nil {
		return err
	}

	if !a.session.IsSignedIn() {
		fmt.Println("Consent saved. It will be uploaded after you sign in.")
		return nil
	}

	if err := a.session.Reconcile(ctx); err != nil {
		fmt.Println("Consent saved locally; upload failed and will be retried.")
		a.log.Warn(ctx, "consent upload failed", "error", err)
		return nil
	}
	fmt.Println("Consent recorded.")
	return nil
}

// Withdraw asks for a reason and withdraws the participant from the study.
func (a *App) Withdraw(ctx context.Context) error {
	reason, err := getSimpleText(a.reader, "Why are you withdrawing? (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if _, err := a.session.WithdrawConsent(ctx, reason); err != nil {
		return err
	}
	fmt.Println("You have been withdrawn from the study.")
	return nil
}

// SetScope updates the data sharing scope. A remote failure leaves the
// stored scope unchanged and is reported, not fatal.
func (a *App) SetScope(ctx context.Context, scopeText string) error {
	scope, err := parseScope(scopeText)
	if err != nil {
		return err
	}

	update := a.session.SetSharingScope(ctx, scope)
	if update.Applied == models.ScopeAppliedRemotely {
		fmt.Println("Sharing scope updated.")
	} else {
		fmt.Println("Could not reach the study service; sharing scope not changed.")
	}
	return nil
}
